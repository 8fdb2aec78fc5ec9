package mkiso

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
)

// Placeholder marks where an option value goes inside a flag template.
const Placeholder = "{}"

// Definition describes an adapter for a tool that is not bundled.
//
// Each option is a template: a list of tokens in which Placeholder is
// replaced by the option value. A template without a placeholder gets the
// value appended as a separate token. An empty template contributes nothing.
//
// A definition file looks like this:
//
//	command = "xorriso"
//	args = ["-as", "mkisofs", "-r"]
//	label = ["-V"]
//	publisher = ["-publisher"]
//	verbose = ["-v"]
//	output = ["-o"]
//
// Any of the lists may also be given as a single string, which is split on
// whitespace.
type Definition struct {
	Command   string   `mapstructure:"command"`
	Args      []string `mapstructure:"args"`
	Label     []string `mapstructure:"label"`
	Publisher []string `mapstructure:"publisher"`
	Verbose   []string `mapstructure:"verbose"`
	Output    []string `mapstructure:"output"`
}

// Validate reports every problem with d at once.
func (d Definition) Validate() error {
	var errs error
	if strings.TrimSpace(d.Command) == "" {
		errs = multierror.Append(errs, fmt.Errorf("'command' is required"))
	}
	for _, tok := range d.Verbose {
		if strings.Contains(tok, Placeholder) {
			errs = multierror.Append(errs, fmt.Errorf("'verbose' takes no value, found placeholder in %q", tok))
		}
	}
	return errs
}

// Factory returns a Factory producing adapters that follow d. The
// definition is validated first.
func (d Definition) Factory() (Factory, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAdapter, err)
	}
	return func() Adapter {
		args := make([]string, len(d.Args))
		copy(args, d.Args)
		return &definitionAdapter{def: d, args: args}
	}, nil
}

// LoadDefinition reads a TOML adapter definition from path.
func LoadDefinition(ctx context.Context, path string) (Definition, error) {
	if err := ctx.Err(); err != nil {
		return Definition{}, err
	}

	log.Debugf("Loading adapter definition file: %s", path)
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Definition{}, fmt.Errorf("%w: %s: %v", ErrAdapterNotFound, path, err)
		}
		return Definition{}, fmt.Errorf("%w: failed to decode definition file '%s': %v", ErrMalformedAdapter, path, err)
	}

	def, err := DecodeDefinition(raw)
	if err != nil {
		return Definition{}, fmt.Errorf("definition file '%s': %w", path, err)
	}
	return def, nil
}

// DecodeDefinition converts generic key/value data, as produced by a TOML
// or config decoder, into a Definition. Unknown keys are rejected.
func DecodeDefinition(raw map[string]interface{}) (Definition, error) {
	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncKind(splitFieldsHook),
		ErrorUnused: true,
		Result:      &def,
	})
	if err != nil {
		return Definition{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrMalformedAdapter, err)
	}
	return def, nil
}

func splitFieldsHook(from reflect.Kind, to reflect.Kind, data interface{}) (interface{}, error) {
	if from != reflect.String || to != reflect.Slice {
		return data, nil
	}
	return strings.Fields(data.(string)), nil
}

type definitionAdapter struct {
	def  Definition
	args []string
}

func (a *definitionAdapter) Command() string { return a.def.Command }
func (a *definitionAdapter) Args() []string  { return a.args }

func (a *definitionAdapter) Label(name string) {
	a.args = append(a.args, expand(a.def.Label, name)...)
}

func (a *definitionAdapter) Publisher(name string) {
	a.args = append(a.args, expand(a.def.Publisher, name)...)
}

func (a *definitionAdapter) Verbose() {
	a.args = append(a.args, a.def.Verbose...)
}

func (a *definitionAdapter) Output(target string) {
	a.args = append(a.args, expand(a.def.Output, target)...)
}

func expand(template []string, value string) []string {
	if len(template) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(template)+1)
	substituted := false
	for _, tok := range template {
		if strings.Contains(tok, Placeholder) {
			tok = strings.ReplaceAll(tok, Placeholder, value)
			substituted = true
		}
		tokens = append(tokens, tok)
	}
	if !substituted {
		tokens = append(tokens, value)
	}
	return tokens
}

var _ Adapter = &definitionAdapter{}
