package mkiso

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
)

const maxLineSize = 1024 * 1024

// SpawnOptions is handed to the child process unmodified.
type SpawnOptions struct {
	// Dir is the working directory. Empty means the caller's.
	Dir string
	// Env replaces the environment when non-nil.
	Env []string
	// Stdin is connected to the child's standard input. Nil means the null
	// device.
	Stdin io.Reader
}

// Process is a running external tool.
//
// The embedded Emitter publishes lifecycle events (EventSpawn, EventExit,
// EventClose, EventError). Stdout and Stderr publish one EventData per line.
// Callers may emit their own events on it as well.
type Process struct {
	Emitter

	Stdout *Emitter
	Stderr *Emitter

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser

	done   chan struct{}
	err    error
	code   int
	signal string
}

func newProcess(command string, args []string, opts *SpawnOptions) (*Process, error) {
	cmd := exec.Command(command, args...)
	if opts != nil {
		cmd.Dir = opts.Dir
		cmd.Env = opts.Env
		cmd.Stdin = opts.Stdin
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe for %s: %v", ErrSpawn, command, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdout.Close()
		return nil, fmt.Errorf("%w: stderr pipe for %s: %v", ErrSpawn, command, err)
	}

	return &Process{
		Stdout: &Emitter{},
		Stderr: &Emitter{},
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		done:   make(chan struct{}),
		code:   -1,
	}, nil
}

func (p *Process) start() error {
	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("%w '%s': %v", ErrSpawn, p.String(), err)
	}
	p.Emit(Event{Name: EventSpawn})

	go p.run()
	return nil
}

func (p *Process) run() {
	var wg sync.WaitGroup
	wg.Add(2)
	go p.scanLines(&wg, p.Stdout, p.stdout)
	go p.scanLines(&wg, p.Stderr, p.stderr)
	// Wait closes the pipes, so both readers have to be drained first.
	wg.Wait()

	err := p.cmd.Wait()
	p.code, p.signal = exitStatus(p.cmd.ProcessState)

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.Emit(Event{Name: EventError, Err: err})
	}

	p.Emit(Event{Name: EventExit, Code: p.code, Signal: p.signal})
	p.Emit(Event{Name: EventClose, Code: p.code, Signal: p.signal})

	p.err = err
	close(p.done)
}

func (p *Process) scanLines(wg *sync.WaitGroup, stream *Emitter, r io.Reader) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stream.Emit(Event{Name: EventData, Line: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		p.Emit(Event{Name: EventError, Err: fmt.Errorf("error reading output of %s: %w", p.cmd.Path, err)})
		// keep the child from blocking on a full pipe
		_, _ = io.Copy(io.Discard, r)
	}
}

func exitStatus(ps *os.ProcessState) (int, string) {
	if ps == nil {
		return -1, ""
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -1, ws.Signal().String()
	}
	return ps.ExitCode(), ""
}

// Pid returns the process id of the child.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Args returns the full argument vector the child was started with,
// including the command.
func (p *Process) Args() []string {
	return p.cmd.Args
}

// String returns the command line, space separated.
func (p *Process) String() string {
	return strings.Join(p.cmd.Args, " ")
}

// Done is closed once the child has exited and every event was emitted.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until Done is closed. It returns nil if the tool exited with
// code 0 and an *exec.ExitError if it failed.
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// ExitCode returns the exit code of the child, or -1 if it has not exited
// or was terminated by a signal.
func (p *Process) ExitCode() int {
	select {
	case <-p.done:
		return p.code
	default:
		return -1
	}
}

// Signal sends sig to the child.
func (p *Process) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

// Kill terminates the child immediately.
func (p *Process) Kill() error {
	return p.cmd.Process.Kill()
}
