package process

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrGroupGone is returned when a signal targets a process group that no
// longer exists. Callers treat it as a warning, never as a failure.
var ErrGroupGone = errors.New("process group already gone")

// Signaler delivers a signal to every process in a process group.
// The same capability is used for forwarding and for the forced kill.
type Signaler interface {
	Signal(pgid int, sig syscall.Signal) error
}

// GroupSignaler signals real process groups with kill(2).
type GroupSignaler struct{}

// Signal sends sig to the process group pgid.
func (GroupSignaler) Signal(pgid int, sig syscall.Signal) error {
	// kill(0) and kill(-1) would hit our own group or every process.
	if pgid <= 1 {
		return fmt.Errorf("refusing to signal process group %d", pgid)
	}
	if err := unix.Kill(-pgid, sig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return ErrGroupGone
		}
		return fmt.Errorf("signal %s to group %d: %w", sig, pgid, err)
	}
	return nil
}
