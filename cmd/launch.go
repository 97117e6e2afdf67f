package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/smazurov/camoufox-launcher/internal/cache"
	"github.com/smazurov/camoufox-launcher/internal/config"
	"github.com/smazurov/camoufox-launcher/internal/driver"
	"github.com/smazurov/camoufox-launcher/internal/logging"
	"github.com/smazurov/camoufox-launcher/internal/metrics"
	"github.com/smazurov/camoufox-launcher/internal/options"
	"github.com/smazurov/camoufox-launcher/internal/payload"
	"github.com/smazurov/camoufox-launcher/internal/process"
	"github.com/smazurov/camoufox-launcher/internal/systemd"
	"github.com/smazurov/camoufox-launcher/internal/version"
	"github.com/spf13/cobra"
)

// UsageExitCode is returned for invalid command lines.
const UsageExitCode = 2

var targetOSes = []string{"windows", "macos", "linux"}

// Settings control the launcher itself, resolved CLI > env > settings file.
type Settings struct {
	Settings string `help:"Path to launcher settings (TOML)"`

	GracePeriod  time.Duration `toml:"supervisor.grace_period" env:"GRACE_PERIOD"`
	PollInterval time.Duration `toml:"supervisor.poll_interval" env:"POLL_INTERVAL"`
	KillTimeout  time.Duration `toml:"supervisor.kill_timeout" env:"KILL_TIMEOUT"`

	Node         string `toml:"driver.node" env:"NODE"`
	LaunchScript string `toml:"driver.launch_script" env:"LAUNCH_SCRIPT"`
	DriverDir    string `toml:"driver.dir" env:"DRIVER_DIR"`

	LoggingLevel  string `toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `toml:"logging.format" env:"LOGGING_FORMAT"`

	MetricsTextfile string `toml:"metrics.textfile" env:"METRICS_TEXTFILE"`
}

type launchFlags struct {
	options.Flags

	port            int
	humanizeMaxTime float64
	printConfig     bool
	checkOnly       bool
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	var exitCode int
	root := CreateRootCmd(&exitCode)
	root.AddCommand(CreateVersionCmd())

	if err := root.Execute(); err != nil {
		return UsageExitCode
	}
	return exitCode
}

// CreateRootCmd creates the launcher command. The launch result is stored
// in exitCode.
func CreateRootCmd(exitCode *int) *cobra.Command {
	settings := &Settings{
		GracePeriod:   process.DefaultGracePeriod,
		PollInterval:  process.DefaultPollInterval,
		KillTimeout:   process.DefaultKillTimeout,
		LoggingLevel:  "info",
		LoggingFormat: "text",
	}
	flags := &launchFlags{}

	cmd := &cobra.Command{
		Use:   version.Name,
		Short: "Launch the Camoufox Playwright websocket server",
		Long: `Builds the launch options from a config file and flags, hands them to the ` +
			`server on stdin and supervises it. SIGINT and SIGTERM are forwarded to the ` +
			`server's process group; a server still running after the grace period is killed.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.complete(cmd); err != nil {
				return err
			}
			*exitCode = run(cmd, settings, flags)
			return nil
		},
	}

	f := cmd.Flags()

	// Launch options
	f.StringVar(&flags.ConfigFile, "config-file", "", "JSON/YAML/TOML file with launch options")
	f.StringArrayVar(&flags.Set, "set", nil, "Override a launch option, KEY=VALUE with dotted keys (repeatable)")
	f.IntVar(&flags.port, "port", 0, "Playwright WS server port")
	f.StringVar(&flags.WSPath, "ws-path", "", "Playwright WS path")
	f.StringVar(&flags.Headless, "headless", "", "Headless mode: true, false or virtual")
	f.StringVar(&flags.ExecutablePath, "executable-path", "", "Path to camoufox executable")
	f.StringVar(&flags.GeoIP, "geoip", "", "GeoIP option: true/false/auto or an explicit IP")
	f.BoolVar(&flags.GeoIPAuto, "geoip-auto", false, "Shortcut for --geoip auto")
	f.StringVar(&flags.ProxyServer, "proxy-server", "", "Proxy server URL, e.g. socks5://127.0.0.1:9050")
	f.StringVar(&flags.ProxyUsername, "proxy-username", "", "Proxy username")
	f.StringVar(&flags.ProxyPassword, "proxy-password", "", "Proxy password")
	f.StringArrayVar(&flags.OS, "os", nil, "Target OS for fingerprint generation: windows, macos or linux (repeatable)")
	f.StringArrayVar(&flags.Locale, "locale", nil, "Locale value (repeatable)")
	f.BoolVar(&flags.Humanize, "humanize", false, "Enable human-like mouse movement")
	f.Float64Var(&flags.humanizeMaxTime, "humanize-max-time", 0, "Humanize max duration in seconds")
	f.BoolVar(&flags.printConfig, "print-effective-config", false, "Print the launch options before launching")
	f.BoolVar(&flags.checkOnly, "check-only", false, "Validate the launch options and exit without running the server")

	// Launcher settings
	f.StringVar(&settings.Settings, "settings", "", "Path to launcher settings (TOML)")
	f.DurationVar(&settings.GracePeriod, "grace-period", settings.GracePeriod, "Time the server gets to exit after a shutdown signal")
	f.DurationVar(&settings.PollInterval, "poll-interval", settings.PollInterval, "How often the grace deadline is checked")
	f.DurationVar(&settings.KillTimeout, "kill-timeout", settings.KillTimeout, "Time to wait for the server to be reaped after SIGKILL")
	f.StringVar(&settings.Node, "node", "", "Node.js binary (default: node on PATH)")
	f.StringVar(&settings.LaunchScript, "launch-script", "", "Server launch script")
	f.StringVar(&settings.DriverDir, "driver-dir", "", "Server working directory (default: the launch script's directory)")
	f.StringVar(&settings.LoggingLevel, "logging-level", settings.LoggingLevel, "Logging level (debug, info, warn, error)")
	f.StringVar(&settings.LoggingFormat, "logging-format", settings.LoggingFormat, "Logging format (text, json)")
	f.StringVar(&settings.MetricsTextfile, "metrics-textfile", "", "Write supervision metrics to this file on exit")

	return cmd
}

// complete validates choices and fills the optional values cobra cannot
// express as pointers.
func (l *launchFlags) complete(cmd *cobra.Command) error {
	if l.Headless != "" {
		if _, err := options.ResolveHeadless(l.Headless); err != nil {
			return err
		}
	}
	for _, o := range l.OS {
		if !slices.Contains(targetOSes, o) {
			return fmt.Errorf("invalid --os value %q: choose from %v", o, targetOSes)
		}
	}
	if cmd.Flags().Changed("port") {
		l.Port = &l.port
	}
	if cmd.Flags().Changed("humanize-max-time") {
		l.HumanizeMaxTime = &l.humanizeMaxTime
	}
	return nil
}

// run performs one launch and returns the exit code.
func run(cmd *cobra.Command, settings *Settings, flags *launchFlags) int {
	logger := logging.GetLogger("launcher")

	if err := config.LoadConfig(settings, cmd); err != nil {
		logger.Error("Failed to load settings", "error", err, "settings", settings.Settings)
		return process.FallbackExitCode
	}
	logging.Initialize(config.LoggingConfig(settings.Settings, settings.LoggingLevel, settings.LoggingFormat))
	logger = logging.GetLogger("launcher")

	if err := cache.Seed(logging.GetLogger("cache")); err != nil {
		logger.Error("Failed to seed runtime cache", "error", err)
		return process.FallbackExitCode
	}

	doc, err := options.Build(flags.Flags)
	if err != nil {
		logger.Error("Invalid launch options", "error", err)
		return process.FallbackExitCode
	}

	if flags.printConfig || flags.checkOnly {
		if _, err := cmd.OutOrStdout().Write(options.Pretty(doc)); err != nil {
			logger.Warn("Failed to print launch options", "error", err)
		}
	}
	if flags.checkOnly {
		printEndpoint(cmd.OutOrStdout(), doc)
		return 0
	}

	drv, err := driver.Resolve(driver.Config{
		Node:   settings.Node,
		Script: settings.LaunchScript,
		Dir:    settings.DriverDir,
	})
	if err != nil {
		logger.Error("Server driver not available", "error", err)
		return process.FallbackExitCode
	}

	normalized, err := options.Normalize(doc)
	if err != nil {
		logger.Error("Failed to normalize launch options", "error", err)
		return process.FallbackExitCode
	}
	framed, err := payload.Encode(normalized)
	if err != nil {
		logger.Error("Failed to encode launch options", "error", err)
		return process.FallbackExitCode
	}

	procLogger := logging.GetLogger("process")
	started := time.Now()
	child, err := process.Launch(drv.LaunchSpec(framed), procLogger)
	if err != nil {
		var launchErr *process.LaunchError
		if errors.As(err, &launchErr) {
			logger.Error("Failed to launch server", "op", launchErr.Op, "path", launchErr.Path, "error", launchErr.Err)
		} else {
			logger.Error("Failed to launch server", "error", err)
		}
		return process.FallbackExitCode
	}

	recorder := metrics.NewRecorder()
	notifier := systemd.NewNotifier(logging.GetLogger("systemd"))
	notifier.Ready(child.Pid())

	supervisor := process.NewSupervisor(&process.SupervisorOptions{
		PollInterval: settings.PollInterval,
		GracePeriod:  settings.GracePeriod,
		KillTimeout:  settings.KillTimeout,
		OnPhaseChange: func(from, to process.Phase) {
			recorder.PhaseChanged(from, to)
			notifier.PhaseChanged(from, to)
		},
		OnSignal: recorder.SignalForwarded,
		Logger:   procLogger,
	})
	out := supervisor.Supervise(child)
	exitCode := process.ResolveExitCode(out)

	recorder.Finished(out, exitCode, time.Since(started))
	if settings.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(settings.MetricsTextfile); err != nil {
			logger.Warn("Failed to write metrics textfile", "error", err, "path", settings.MetricsTextfile)
		}
	}

	logger.Info("Launcher exiting", "exit_code", exitCode, "escalated", out.Escalated)
	return exitCode
}

func printEndpoint(w io.Writer, doc []byte) {
	if endpoint, ok := options.Endpoint(doc); ok {
		fmt.Fprintf(w, "Config validated. Expected endpoint like: %s\n", endpoint)
	}
}
