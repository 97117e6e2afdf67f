// Package metrics records how a supervised launch went, for the Prometheus
// node-exporter textfile collector.
package metrics

import (
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/smazurov/camoufox-launcher/internal/process"
	"golang.org/x/sys/unix"
)

const namespace = "camoufox_launcher"

// Recorder holds the supervision metrics of one launch in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	signalsForwarded *prometheus.CounterVec
	phaseTransitions *prometheus.CounterVec
	escalations      prometheus.Counter
	childExitCode    prometheus.Gauge
	exitCode         prometheus.Gauge
	reaped           prometheus.Gauge
	duration         prometheus.Gauge

	// Local cache for log lines and tests.
	mu       sync.Mutex
	snapshot Snapshot
}

// Snapshot holds the current metric values.
type Snapshot struct {
	Signals     map[string]int
	Transitions int
	Escalated   bool
	ExitCode    int
	Duration    time.Duration
}

// NewRecorder creates a recorder with all metrics registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		signalsForwarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signals",
			Name:      "forwarded_total",
			Help:      "Host signals forwarded to the server's process group",
		}, []string{"signal"}),
		phaseTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "phase_transitions_total",
			Help:      "Supervisor phase transitions",
		}, []string{"from", "to"}),
		escalations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "escalations_total",
			Help:      "Grace periods that ended in SIGKILL",
		}),
		childExitCode: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "child",
			Name:      "exit_code",
			Help:      "Exit code observed from the server, -1 if it was not observed",
		}),
		exitCode: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exit_code",
			Help:      "Exit code reported by the launcher",
		}),
		reaped: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "child",
			Name:      "reaped",
			Help:      "1 if the server was confirmed gone",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "supervisor",
			Name:      "duration_seconds",
			Help:      "Time spent supervising the server",
		}),
		snapshot: Snapshot{Signals: make(map[string]int), ExitCode: -1},
	}
}

// SignalForwarded counts a forwarded host signal. It matches process.SignalCallback.
func (r *Recorder) SignalForwarded(sig syscall.Signal) {
	name := signalName(sig)
	r.signalsForwarded.WithLabelValues(name).Inc()

	r.mu.Lock()
	r.snapshot.Signals[name]++
	r.mu.Unlock()
}

// PhaseChanged counts a phase transition. It matches process.PhaseChangeCallback.
func (r *Recorder) PhaseChanged(from, to process.Phase) {
	r.phaseTransitions.WithLabelValues(string(from), string(to)).Inc()

	r.mu.Lock()
	r.snapshot.Transitions++
	r.mu.Unlock()
}

// Finished records the outcome of supervision and the launcher's exit code.
func (r *Recorder) Finished(out process.Outcome, exitCode int, elapsed time.Duration) {
	if out.Escalated {
		r.escalations.Inc()
	}
	childCode := -1
	if out.Exited {
		childCode = out.ExitCode
	}
	r.childExitCode.Set(float64(childCode))
	r.exitCode.Set(float64(exitCode))
	r.reaped.Set(boolGauge(out.Reaped))
	r.duration.Set(elapsed.Seconds())

	r.mu.Lock()
	r.snapshot.Escalated = out.Escalated
	r.snapshot.ExitCode = exitCode
	r.snapshot.Duration = elapsed
	r.mu.Unlock()
}

// Snapshot returns a copy of the current values.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := r.snapshot
	dup.Signals = make(map[string]int, len(r.snapshot.Signals))
	for k, v := range r.snapshot.Signals {
		dup.Signals[k] = v
	}
	return dup
}

// Registry exposes the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return strconv.Itoa(int(sig))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
