package process

// FallbackExitCode is reported when the child was force-killed and neither
// its exit code nor the triggering signal is known.
const FallbackExitCode = 1

// ResolveExitCode maps a supervision outcome to this process's exit code.
//
// A child that exited on its own, even during the grace period, keeps its
// own code. A child that had to be force-killed reports 128+N for the host
// signal N that started the shutdown, not for SIGKILL.
func ResolveExitCode(out Outcome) int {
	if !out.Escalated && out.Exited {
		return clampExitCode(out.ExitCode)
	}
	if out.Signal != 0 {
		return 128 + int(out.Signal)
	}
	return FallbackExitCode
}

func clampExitCode(code int) int {
	if code < 0 || code > 255 {
		return FallbackExitCode
	}
	return code
}
