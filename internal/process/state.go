package process

import (
	"sync"
	"syscall"
	"time"
)

// Phase represents where supervision of a child currently is.
type Phase string

// Supervision phases.
const (
	PhaseRunning     Phase = "running"      // Child alive, no shutdown requested
	PhaseGracePeriod Phase = "grace_period" // Signal forwarded, waiting for voluntary exit
	PhaseForceKilled Phase = "force_killed" // Grace deadline passed, SIGKILL sent
	PhaseDone        Phase = "done"         // Terminal
)

// State is the shared supervision state. The signal bridge records the
// received signal; the supervisor owns phase and deadline transitions.
type State struct {
	mu       sync.Mutex
	phase    Phase
	signal   syscall.Signal
	deadline time.Time
}

// NewState returns a State in PhaseRunning.
func NewState() *State {
	return &State{phase: PhaseRunning}
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// RecordSignal latches sig if no signal has been recorded yet.
// Returns true if sig became the recorded signal.
func (s *State) RecordSignal(sig syscall.Signal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signal != 0 {
		return false
	}
	s.signal = sig
	return true
}

// Signal returns the recorded signal, or 0 if none arrived.
func (s *State) Signal() syscall.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signal
}

// Deadline returns the grace deadline and whether it has been set.
func (s *State) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline, !s.deadline.IsZero()
}

// enterGracePeriod moves RUNNING to GRACE_PERIOD and fixes the deadline.
// It is a no-op from any other phase, so the deadline is set at most once.
func (s *State) enterGracePeriod(now time.Time, grace time.Duration) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRunning {
		return s.deadline, false
	}
	s.phase = PhaseGracePeriod
	s.deadline = now.Add(grace)
	return s.deadline, true
}

// transition sets the phase and returns the previous one.
func (s *State) transition(to Phase) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.phase
	if from != PhaseDone {
		s.phase = to
	}
	return from
}
