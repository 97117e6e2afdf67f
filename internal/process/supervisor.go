package process

import (
	"errors"
	"log/slog"
	"syscall"
	"time"

	"github.com/smazurov/camoufox-launcher/internal/logging"
)

// Default supervision timings.
const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultGracePeriod  = 8 * time.Second
	DefaultKillTimeout  = 5 * time.Second
)

// PhaseChangeCallback is called when supervision moves between phases.
type PhaseChangeCallback func(oldPhase, newPhase Phase)

// SupervisorOptions configures a Supervisor. Zero durations use the defaults.
type SupervisorOptions struct {
	PollInterval time.Duration
	GracePeriod  time.Duration
	KillTimeout  time.Duration

	// Signaler delivers forwarded signals and the forced kill. If nil, uses GroupSignaler.
	Signaler Signaler

	// Source provides host signal delivery. If nil, uses os/signal.
	Source SignalSource

	// OnPhaseChange is called on every phase transition (optional).
	OnPhaseChange PhaseChangeCallback

	// OnSignal is called for every forwarded host signal (optional).
	OnSignal SignalCallback

	// Logger for supervision. If nil, uses slog.Default().
	Logger logging.Logger
}

// Outcome is the terminal result of supervising one child.
type Outcome struct {
	Phase     Phase
	Signal    syscall.Signal // first host signal received, 0 if none
	Exited    bool           // child exit was observed with ExitCode
	ExitCode  int
	Escalated bool // the grace period expired and SIGKILL was sent
	Reaped    bool // the child was confirmed gone
	Deadline  time.Time
}

// Supervisor keeps a child alive until it exits, relaying host shutdown
// signals and escalating to SIGKILL after the grace period.
type Supervisor struct {
	pollInterval  time.Duration
	gracePeriod   time.Duration
	killTimeout   time.Duration
	signaler      Signaler
	source        SignalSource
	onPhaseChange PhaseChangeCallback
	onSignal      SignalCallback
	logger        logging.Logger
}

// NewSupervisor creates a Supervisor.
func NewSupervisor(opts *SupervisorOptions) *Supervisor {
	if opts == nil {
		opts = &SupervisorOptions{}
	}
	s := &Supervisor{
		pollInterval:  opts.PollInterval,
		gracePeriod:   opts.GracePeriod,
		killTimeout:   opts.KillTimeout,
		signaler:      opts.Signaler,
		source:        opts.Source,
		onPhaseChange: opts.OnPhaseChange,
		onSignal:      opts.OnSignal,
		logger:        opts.Logger,
	}
	if s.pollInterval <= 0 {
		s.pollInterval = DefaultPollInterval
	}
	if s.gracePeriod <= 0 {
		s.gracePeriod = DefaultGracePeriod
	}
	if s.killTimeout <= 0 {
		s.killTimeout = DefaultKillTimeout
	}
	if s.signaler == nil {
		s.signaler = GroupSignaler{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Supervise blocks until the child is gone and returns how it ended.
// Host signal handlers are replaced for the duration of the call and always
// restored before it returns.
func (s *Supervisor) Supervise(child Supervised) Outcome {
	state := NewState()
	bridge := NewSignalBridge(child.Pgid(), state, &BridgeOptions{
		Signaler: s.signaler,
		Source:   s.source,
		OnSignal: s.onSignal,
		Logger:   s.logger,
	})
	bridge.Install()
	defer bridge.Restore()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-child.Done():
			return s.finish(state, child, false, true)

		case <-bridge.Wake():
			s.checkSignal(state)

		case now := <-ticker.C:
			s.checkSignal(state)
			if deadline, ok := state.Deadline(); ok && !now.Before(deadline) {
				// The child may have exited in the same tick.
				select {
				case <-child.Done():
					return s.finish(state, child, false, true)
				default:
				}
				return s.forceKill(state, child)
			}
		}
	}
}

// checkSignal enters the grace period once a signal has been recorded.
func (s *Supervisor) checkSignal(state *State) {
	sig := state.Signal()
	if sig == 0 {
		return
	}
	deadline, entered := state.enterGracePeriod(time.Now(), s.gracePeriod)
	if !entered {
		return
	}
	s.logger.Info("Shutdown requested, waiting for process to exit",
		"signal", sig.String(), "grace_period", s.gracePeriod, "deadline", deadline)
	s.changed(PhaseRunning, PhaseGracePeriod)
}

func (s *Supervisor) forceKill(state *State, child Supervised) Outcome {
	from := state.transition(PhaseForceKilled)
	s.changed(from, PhaseForceKilled)
	s.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", s.gracePeriod, "pgid", child.Pgid())

	if err := s.signaler.Signal(child.Pgid(), syscall.SIGKILL); err != nil {
		if errors.Is(err, ErrGroupGone) {
			s.logger.Debug("Process group already gone before kill", "pgid", child.Pgid())
		} else {
			s.logger.Error("Failed to kill process group", "pgid", child.Pgid(), "error", err)
		}
	}

	// Wait with a secondary timeout to prevent hanging
	select {
	case <-child.Done():
		return s.finish(state, child, true, true)
	case <-time.After(s.killTimeout):
		s.logger.Error("Process did not exit after kill signal", "timeout", s.killTimeout)
		return s.finish(state, child, true, false)
	}
}

func (s *Supervisor) finish(state *State, child Supervised, escalated, reaped bool) Outcome {
	out := Outcome{
		Phase:     PhaseDone,
		Signal:    state.Signal(),
		Escalated: escalated,
		Reaped:    reaped,
	}
	out.Deadline, _ = state.Deadline()
	if reaped && !escalated {
		out.Exited = true
		out.ExitCode = child.ExitCode()
	}

	from := state.transition(PhaseDone)
	s.changed(from, PhaseDone)
	if out.Exited {
		s.logger.Info("Process exited", "exit_code", out.ExitCode)
	} else {
		s.logger.Info("Supervision finished after forced kill", "reaped", reaped)
	}
	return out
}

func (s *Supervisor) changed(from, to Phase) {
	if from == to {
		return
	}
	s.logger.Debug("Supervision phase changed", "from", from, "to", to)
	if s.onPhaseChange != nil {
		s.onPhaseChange(from, to)
	}
}
