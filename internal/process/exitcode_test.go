package process

import (
	"syscall"
	"testing"
)

func TestResolveExitCodeChildExitVerbatim(t *testing.T) {
	for code := 0; code <= 255; code++ {
		out := Outcome{Phase: PhaseDone, Exited: true, ExitCode: code, Reaped: true}
		if got := ResolveExitCode(out); got != code {
			t.Fatalf("ResolveExitCode(exit %d) = %d", code, got)
		}
	}
}

func TestResolveExitCode(t *testing.T) {
	tests := []struct {
		name string
		out  Outcome
		want int
	}{
		{
			name: "signal received, child exits with own code",
			out:  Outcome{Signal: syscall.SIGINT, Exited: true, ExitCode: 130, Reaped: true},
			want: 130,
		},
		{
			name: "signal received, child exits cleanly",
			out:  Outcome{Signal: syscall.SIGTERM, Exited: true, ExitCode: 0, Reaped: true},
			want: 0,
		},
		{
			name: "escalated after SIGTERM",
			out:  Outcome{Signal: syscall.SIGTERM, Escalated: true, Reaped: true},
			want: 143,
		},
		{
			name: "escalated after SIGINT, reap timed out",
			out:  Outcome{Signal: syscall.SIGINT, Escalated: true},
			want: 130,
		},
		{
			name: "escalated with nothing known",
			out:  Outcome{Escalated: true},
			want: FallbackExitCode,
		},
		{
			name: "out of range exit code",
			out:  Outcome{Exited: true, ExitCode: -1},
			want: FallbackExitCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveExitCode(tt.out); got != tt.want {
				t.Errorf("ResolveExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
