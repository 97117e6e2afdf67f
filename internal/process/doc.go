// Package process launches a server process and supervises it until it is gone.
//
// Launch starts the child as the leader of a new process group, writes a
// one-shot payload to its stdin and closes stdin:
//   - The executable is resolved with exec.LookPath
//   - Failures before the payload is delivered return *LaunchError
//   - No signal handlers are touched
//
// Supervisor watches the child through four phases:
//
//	running -> grace_period -> force_killed -> done
//	running -> done (child exited on its own)
//
// While supervising, SIGINT and SIGTERM received by this process are
// forwarded to the child's group by a SignalBridge. The first signal starts
// the grace period; later signals are forwarded but neither replace the
// recorded signal nor move the deadline. If the child is still alive at the
// deadline its group gets SIGKILL and is given a bounded time to be reaped.
// The previous signal disposition is restored on every return path.
//
// ResolveExitCode turns the Outcome into this process's exit code:
//
//	child exited (with or without a signal)  -> child's code
//	force-killed after signal N              -> 128+N
//	force-killed, nothing known              -> FallbackExitCode
//
// Example usage:
//
//	child, err := process.Launch(process.LaunchSpec{
//	    Path:    "node",
//	    Args:    []string{"launchServer.js"},
//	    Dir:     driverDir,
//	    Payload: payload,
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	out := process.NewSupervisor(&process.SupervisorOptions{Logger: logger}).Supervise(child)
//	os.Exit(process.ResolveExitCode(out))
package process
