package mkiso

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Extension is appended to output paths that do not already carry it.
const Extension = ".iso"

// ISO accumulates the options for one image and runs the external tool.
//
// The configuration methods return the receiver so they can be chained.
// An ISO must not be reconfigured while Exec is running on it.
type ISO struct {
	events Emitter

	source    string
	output    string
	label     string
	publisher string
	verbose   bool
	factory   Factory

	fs       afero.Fs
	lookPath func(string) (string, error)
	platform string
}

// Option customizes the environment an ISO runs in.
type Option func(*ISO)

// WithFs sets the filesystem used to check that the source exists.
func WithFs(fs afero.Fs) Option {
	return func(m *ISO) { m.fs = fs }
}

// WithLookPath replaces exec.LookPath for locating the adapter's command.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(m *ISO) { m.lookPath = lookPath }
}

// WithPlatform overrides runtime.GOOS when choosing the default adapter.
func WithPlatform(platform string) Option {
	return func(m *ISO) { m.platform = platform }
}

// New returns an ISO for the directory sourceDir. The image is written next
// to it as sourceDir + ".iso" unless Output is called.
func New(sourceDir string, opts ...Option) (*ISO, error) {
	if sourceDir == "" {
		return nil, ErrMissingSource
	}

	m := &ISO{
		source:   sourceDir,
		output:   DefaultOutput(sourceDir),
		fs:       afero.NewOsFs(),
		lookPath: exec.LookPath,
		platform: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// DefaultOutput returns the image path used for sourceDir when no output was
// configured: one trailing separator is dropped and Extension appended.
func DefaultOutput(sourceDir string) string {
	trimmed := sourceDir
	if strings.HasSuffix(trimmed, string(os.PathSeparator)) || strings.HasSuffix(trimmed, "/") {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return trimmed + Extension
}

// Source returns the directory the image is built from.
func (m *ISO) Source() string { return m.source }

// OutputPath returns the path the image will be written to.
func (m *ISO) OutputPath() string { return m.output }

// Label sets the volume name. Empty names are ignored.
func (m *ISO) Label(name string) *ISO {
	if name != "" {
		m.label = name
	}
	return m
}

// Publisher sets the publisher name. Empty names are ignored.
func (m *ISO) Publisher(name string) *ISO {
	if name != "" {
		m.publisher = name
	}
	return m
}

// Verbose asks the tool for verbose output.
func (m *ISO) Verbose() *ISO {
	m.verbose = true
	return m
}

// Output sets the image path. Extension is appended unless target already
// ends with it; an existing different extension is kept. Empty targets are
// ignored.
func (m *ISO) Output(target string) *ISO {
	if target == "" {
		return m
	}
	if filepath.Ext(target) == Extension {
		m.output = target
	} else {
		m.output = target + Extension
	}
	return m
}

// Adapter selects the adapter by bundled name or by the path of a
// definition file, replacing any earlier selection.
func (m *ISO) Adapter(ctx context.Context, ref string) (*ISO, error) {
	f, err := Resolve(ctx, ref)
	if err != nil {
		return m, err
	}
	m.factory = f
	return m, nil
}

// AdapterFactory selects f as the adapter, replacing any earlier selection.
func (m *ISO) AdapterFactory(f Factory) *ISO {
	m.factory = f
	return m
}

// On registers l for events called name. Only names that have a listener
// when Exec is called are relayed from that process; see Exec.
func (m *ISO) On(name string, l Listener) *ISO {
	m.events.On(name, l)
	return m
}

// Exec builds the image.
//
// It checks that the source exists, resolves the adapter (the platform
// default if none was selected), checks that the adapter's command can be
// found, applies label, publisher, verbosity and output in that order and
// starts
//
//	command adapterArgs... extraArgs... source
//
// Any failure up to and including the start of the child is returned and
// no process is left behind. If ctx is already done, its error is returned
// before anything is started. If the operating system refuses to start the
// command, the error wraps ErrSpawn and no event is emitted. Afterwards,
// failures of the tool are only visible through the returned Process and
// the relayed events.
//
// For every event name that has a listener on m at the time of the call,
// the matching process event is relayed to m: EventProgress for stdout
// lines, EventStderr for stderr lines and any other name verbatim.
// Listeners added later are not wired to this process.
func (m *ISO) Exec(ctx context.Context, extraArgs []string, opts *SpawnOptions) (*Process, error) {
	exists, err := afero.Exists(m.fs, m.source)
	if err != nil {
		return nil, fmt.Errorf("failed to check source %s: %w", m.source, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", m.source, ErrSourceNotFound)
	}

	adapter, err := m.loadAdapter(ctx)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := make([]string, 0, len(adapter.Args())+len(extraArgs)+1)
	args = append(args, adapter.Args()...)
	args = append(args, extraArgs...)
	args = append(args, m.source)

	proc, err := newProcess(adapter.Command(), args, opts)
	if err != nil {
		return nil, err
	}
	m.relay(proc)

	log.Debugf("executing: %s", proc)
	if err := proc.start(); err != nil {
		return nil, err
	}
	return proc, nil
}

func (m *ISO) loadAdapter(ctx context.Context) (Adapter, error) {
	factory := m.factory
	if factory == nil {
		f, err := ResolvePlatform(ctx, m.platform)
		if err != nil {
			return nil, err
		}
		factory = f
	}

	adapter := factory()
	if adapter == nil || adapter.Command() == "" || adapter.Args() == nil {
		return nil, fmt.Errorf("%w: an adapter needs a command and an argument list", ErrMalformedAdapter)
	}

	path, err := m.lookPath(adapter.Command())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCommandNotFound, adapter.Command(), err)
	}
	log.Debugf("using adapter command %s at %s", adapter.Command(), path)

	if m.label != "" {
		adapter.Label(m.label)
	}
	if m.publisher != "" {
		adapter.Publisher(m.publisher)
	}
	if m.verbose {
		adapter.Verbose()
	}
	adapter.Output(m.output)

	return adapter, nil
}

func (m *ISO) relay(proc *Process) {
	for _, name := range m.events.EventNames() {
		name := name
		switch name {
		case EventProgress:
			proc.Stdout.On(EventData, func(ev Event) {
				m.events.Emit(Event{Name: EventProgress, Line: ev.Line})
			})
		case EventStderr:
			proc.Stderr.On(EventData, func(ev Event) {
				m.events.Emit(Event{Name: EventStderr, Line: ev.Line})
			})
		default:
			proc.On(name, func(ev Event) {
				m.events.Emit(ev)
			})
		}
	}
}
