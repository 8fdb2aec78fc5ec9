package mkiso

import (
	"sort"
	"sync"
)

// Event names emitted by Process and relayed by ISO.
const (
	// EventSpawn fires once the child has started.
	EventSpawn = "spawn"
	// EventExit fires when the child has been reaped. Code and Signal are set.
	EventExit = "exit"
	// EventClose fires after EventExit once both output streams are drained.
	EventClose = "close"
	// EventError fires when waiting for the child or reading its output
	// fails. Err is set.
	EventError = "error"

	// EventData is the native event of a Stream; one per output line.
	EventData = "data"

	// EventProgress carries a line the tool wrote to stdout.
	EventProgress = "progress"
	// EventStderr carries a line the tool wrote to stderr.
	EventStderr = "stderr"
)

// Event is a single notification. Which fields are meaningful depends on
// Name.
type Event struct {
	Name string

	// Line is the text of an output line, without its terminator.
	Line string

	// Code is the exit code, or -1 if the child was terminated by a signal.
	Code int
	// Signal names the signal that terminated the child, if any.
	Signal string

	Err error

	// Args carries the payload of custom events.
	Args []interface{}
}

// Listener receives events. It runs on the goroutine that emits.
type Listener func(Event)

// Emitter is a goroutine-safe registry of listeners keyed by event name.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// On registers l for events called name.
func (e *Emitter) On(name string, l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]Listener)
	}
	e.listeners[name] = append(e.listeners[name], l)
}

// Emit calls every listener registered for ev.Name, in registration order.
// It reports whether any listener was called.
func (e *Emitter) Emit(ev Event) bool {
	e.mu.RLock()
	ls := make([]Listener, len(e.listeners[ev.Name]))
	copy(ls, e.listeners[ev.Name])
	e.mu.RUnlock()

	for _, l := range ls {
		l(ev)
	}
	return len(ls) > 0
}

// EventNames returns the names that have at least one listener, sorted.
func (e *Emitter) EventNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.listeners))
	for name, ls := range e.listeners {
		if len(ls) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
