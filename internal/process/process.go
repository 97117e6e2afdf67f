package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/smazurov/camoufox-launcher/internal/logging"
)

// LaunchSpec describes the child to start and the payload handed to it.
type LaunchSpec struct {
	Path    string
	Args    []string
	Dir     string
	Env     []string // nil inherits the current environment
	Payload []byte
	Stdout  io.Writer // nil inherits os.Stdout
	Stderr  io.Writer // nil inherits os.Stderr
}

// LaunchError reports a child that could not be started or could not be
// handed its payload.
type LaunchError struct {
	Op   string // lookup, pipe, start, write or close
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Supervised is the view of a running child the supervisor needs.
type Supervised interface {
	Pgid() int
	Done() <-chan struct{}
	ExitCode() int
}

// Child is a launched process leading its own process group.
type Child struct {
	cmd     *exec.Cmd
	pid     int
	done    chan struct{}
	waitErr error
}

// Pid returns the child's process id.
func (c *Child) Pid() int {
	return c.pid
}

// Pgid returns the child's process group id, which equals its pid.
func (c *Child) Pgid() int {
	return c.pid
}

// Done is closed once the child has been reaped.
func (c *Child) Done() <-chan struct{} {
	return c.done
}

// ExitCode returns the child's exit status. A child terminated by signal N
// reports 128+N. Only meaningful after Done is closed; -1 before.
func (c *Child) ExitCode() int {
	select {
	case <-c.done:
		return exitCodeFromError(c.waitErr)
	default:
		return -1
	}
}

// Launch starts the child as a new process group leader, writes the payload
// to its stdin and closes stdin.
func Launch(spec LaunchSpec, logger logging.Logger) (*Child, error) {
	if logger == nil {
		logger = slog.Default()
	}

	path, err := exec.LookPath(spec.Path)
	if err != nil {
		return nil, &LaunchError{Op: "lookup", Path: spec.Path, Err: err}
	}

	cmd := exec.Command(path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdout = spec.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = spec.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// A plain os.Pipe rather than StdinPipe: Wait must not race the handoff
	// by closing the write end underneath us.
	stdinR, stdin, err := os.Pipe()
	if err != nil {
		return nil, &LaunchError{Op: "pipe", Path: path, Err: err}
	}
	cmd.Stdin = stdinR

	if err := cmd.Start(); err != nil {
		_ = stdinR.Close()
		_ = stdin.Close()
		return nil, &LaunchError{Op: "start", Path: path, Err: err}
	}
	_ = stdinR.Close()

	child := &Child{
		cmd:  cmd,
		pid:  cmd.Process.Pid,
		done: make(chan struct{}),
	}
	go func() {
		child.waitErr = cmd.Wait()
		close(child.done)
	}()

	logger.Info("Process started", "pid", child.pid, "path", path, "dir", spec.Dir)

	if err := writePayload(stdin, spec.Payload); err != nil {
		_ = stdin.Close()
		child.abandon(logger)
		return nil, &LaunchError{Op: "write", Path: path, Err: err}
	}
	if err := stdin.Close(); err != nil {
		child.abandon(logger)
		return nil, &LaunchError{Op: "close", Path: path, Err: err}
	}

	logger.Debug("Payload delivered", "pid", child.pid, "bytes", len(spec.Payload))
	return child, nil
}

func writePayload(w io.Writer, payload []byte) error {
	n, err := w.Write(payload)
	if err != nil {
		return err
	}
	if n != len(payload) {
		return io.ErrShortWrite
	}
	return nil
}

// abandon kills and reaps a child whose payload handoff failed.
func (c *Child) abandon(logger logging.Logger) {
	if err := (GroupSignaler{}).Signal(c.Pgid(), syscall.SIGKILL); err != nil && !errors.Is(err, ErrGroupGone) {
		logger.Warn("Failed to kill child after handoff failure", "pid", c.pid, "error", err)
	}
	select {
	case <-c.done:
	case <-time.After(DefaultKillTimeout):
		logger.Error("Process did not exit after kill signal", "pid", c.pid)
	}
}

// exitCodeFromError extracts exit code from a Wait error.
// Returns 0 for nil, 128+N for a child killed by signal N, the exit code
// for other ExitErrors, or 1 for anything else.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal())
		}
		return exitErr.ExitCode()
	}
	return 1
}
