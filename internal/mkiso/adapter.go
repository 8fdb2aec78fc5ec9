// Package mkiso turns a directory into an ISO 9660 image by driving an
// external, platform specific tool.
//
// An Adapter knows the flag syntax of one tool. ISO collects the options a
// caller wants, picks an adapter, spawns the tool and relays what the child
// process does as events.
package mkiso

// Adapter expresses "create an ISO with these options" as a command line for
// one external tool.
//
// The option methods append tokens to Args in the order they are called.
// Calling one twice appends its tokens twice.
type Adapter interface {
	// Command is the executable to run, either a name looked up in PATH or a
	// path.
	Command() string
	// Args are the tokens accumulated so far, starting with the tool's
	// baseline flags.
	Args() []string

	Label(name string)
	Publisher(name string)
	Verbose()
	Output(target string)
}

// Factory produces a fresh Adapter. Every call must return a new instance.
type Factory func() Adapter

// flagAdapter is an Adapter whose options each map to a fixed flag followed
// by the value.
type flagAdapter struct {
	command string
	args    []string

	labelFlag     string
	publisherFlag string
	verboseFlag   string
	outputFlag    string
}

func (a *flagAdapter) Command() string { return a.command }
func (a *flagAdapter) Args() []string  { return a.args }

func (a *flagAdapter) Label(name string) {
	a.args = append(a.args, a.labelFlag, name)
}

func (a *flagAdapter) Publisher(name string) {
	a.args = append(a.args, a.publisherFlag, name)
}

func (a *flagAdapter) Verbose() {
	a.args = append(a.args, a.verboseFlag)
}

func (a *flagAdapter) Output(target string) {
	a.args = append(a.args, a.outputFlag, target)
}

var _ Adapter = &flagAdapter{}
