package process

import (
	"syscall"
	"testing"
	"time"
)

func TestStateRecordSignalFirstWins(t *testing.T) {
	s := NewState()
	if s.Signal() != 0 {
		t.Fatalf("expected no signal, got %v", s.Signal())
	}
	if !s.RecordSignal(syscall.SIGTERM) {
		t.Error("expected first signal to be recorded")
	}
	if s.RecordSignal(syscall.SIGINT) {
		t.Error("expected second signal to be rejected")
	}
	if s.Signal() != syscall.SIGTERM {
		t.Errorf("Signal() = %v, want SIGTERM", s.Signal())
	}
}

func TestStateDeadlineSetOnce(t *testing.T) {
	s := NewState()
	if _, ok := s.Deadline(); ok {
		t.Fatal("expected no deadline in running phase")
	}

	now := time.Now()
	deadline, entered := s.enterGracePeriod(now, time.Second)
	if !entered {
		t.Fatal("expected grace period to be entered")
	}
	if !deadline.Equal(now.Add(time.Second)) {
		t.Errorf("deadline = %v, want %v", deadline, now.Add(time.Second))
	}
	if s.Phase() != PhaseGracePeriod {
		t.Errorf("Phase() = %s, want %s", s.Phase(), PhaseGracePeriod)
	}

	again, entered := s.enterGracePeriod(now.Add(time.Hour), time.Second)
	if entered {
		t.Error("expected second entry to be a no-op")
	}
	if !again.Equal(deadline) {
		t.Errorf("deadline moved from %v to %v", deadline, again)
	}
}

func TestStateDoneIsTerminal(t *testing.T) {
	s := NewState()
	if from := s.transition(PhaseDone); from != PhaseRunning {
		t.Errorf("transition from = %s, want %s", from, PhaseRunning)
	}
	s.transition(PhaseForceKilled)
	if s.Phase() != PhaseDone {
		t.Errorf("Phase() = %s, want %s", s.Phase(), PhaseDone)
	}
	if _, entered := s.enterGracePeriod(time.Now(), time.Second); entered {
		t.Error("expected no grace period after done")
	}
}
