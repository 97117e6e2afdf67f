// Package systemd reports the launcher's lifecycle to the service manager
// through the sd_notify protocol. Every call is a no-op outside a
// Type=notify unit.
package systemd

import (
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/smazurov/camoufox-launcher/internal/logging"
	"github.com/smazurov/camoufox-launcher/internal/process"
)

// Notifier sends state updates to systemd.
type Notifier struct {
	logger logging.Logger
}

// NewNotifier creates a notifier logging failures to logger.
func NewNotifier(logger logging.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Ready reports that the server was started with the given pid.
func (n *Notifier) Ready(pid int) {
	n.send(fmt.Sprintf("%s\nMAINPID=%d\nSTATUS=server running (pid %d)", daemon.SdNotifyReady, pid, pid))
}

// Status updates the free-form status line.
func (n *Notifier) Status(status string) {
	n.send("STATUS=" + status)
}

// Stopping reports that shutdown has begun.
func (n *Notifier) Stopping() {
	n.send(daemon.SdNotifyStopping)
}

// PhaseChanged maps supervisor phases onto notifications. It matches
// process.PhaseChangeCallback.
func (n *Notifier) PhaseChanged(_, to process.Phase) {
	switch to {
	case process.PhaseGracePeriod:
		n.Stopping()
		n.Status("grace period, waiting for server to exit")
	case process.PhaseForceKilled:
		n.Status("grace period expired, server killed")
	case process.PhaseDone:
		n.Status("server exited")
	}
}

func (n *Notifier) send(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.logger.Debug("sd_notify failed", "error", err)
		return
	}
	if sent {
		n.logger.Debug("sd_notify sent", "state", state)
	}
}
