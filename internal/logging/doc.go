// Package logging provides structured logging with per-module log level configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to stderr, leaving stdout to the supervised server
//   - Logs to the systemd journal as well when journald is reachable
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"process": "debug",  // Per-module overrides
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("process")
//	logger.Info("Process started", "pid", pid)
//
// Loggers obtained before Initialize keep working: their level is held in a
// LevelVar that Initialize updates.
//
// # Journal
//
// Journal availability is checked via [github.com/coreos/go-systemd/v22/journal.Enabled].
// Attributes become upper-case journal fields, so entries can be filtered:
//
//	journalctl -t camoufox-launcher MODULE=process
//	journalctl -t camoufox-launcher -p warning
//
// # Configuration
//
// Example TOML settings:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	process = "debug"
package logging
