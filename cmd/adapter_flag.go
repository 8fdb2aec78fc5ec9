package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/LINBIT/mkiso/internal/mkiso"
	"github.com/LINBIT/mkiso/pkg/cliutils"
)

// adapterRef is the value of --adapter: the name of a bundled or registry
// adapter, or the path of a definition file. It is resolved when the image
// is built.
type adapterRef string

func (a *adapterRef) String() string {
	return string(*a)
}

func (a *adapterRef) Set(s string) error {
	if strings.ContainsAny(s, " \t\n") {
		return fmt.Errorf("invalid adapter '%s': expected a name or a path to a definition file", s)
	}
	*a = adapterRef(s)
	return nil
}

func (a *adapterRef) Type() string {
	return "adapter"
}

func (a *adapterRef) UnmarshalText(text []byte) error {
	return a.Set(string(text))
}

// inlineDefinition is the --define form of a definition file.
type inlineDefinition struct {
	Command   string   `arg:"command"`
	Args      []string `arg:"args,"`
	Label     []string `arg:"label,"`
	Publisher []string `arg:"publisher,"`
	Verbose   []string `arg:"verbose,"`
	Output    []string `arg:"output,"`
}

func parseInlineDefinition(s string) (mkiso.Definition, error) {
	var d inlineDefinition
	if err := cliutils.Parse(s, &d); err != nil {
		return mkiso.Definition{}, err
	}
	return mkiso.Definition{
		Command:   d.Command,
		Args:      d.Args,
		Label:     d.Label,
		Publisher: d.Publisher,
		Verbose:   d.Verbose,
		Output:    d.Output,
	}, nil
}

// resolveFactory returns the factory selected by --define or --adapter, or
// nil to let the library pick the platform default.
func resolveFactory(ctx context.Context, reg *mkiso.Registry, ref adapterRef, define string) (mkiso.Factory, error) {
	if define != "" {
		def, err := parseInlineDefinition(define)
		if err != nil {
			return nil, fmt.Errorf("invalid adapter definition: %w", err)
		}
		return def.Factory()
	}

	if ref == "" {
		return nil, nil
	}
	return reg.Resolve(ctx, ref.String())
}

var _ pflag.Value = new(adapterRef)
