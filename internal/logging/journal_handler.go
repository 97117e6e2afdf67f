package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

// SyslogIdentifier tags every journal entry written by this process.
const SyslogIdentifier = "camoufox-launcher"

// JournalHandler is a slog.Handler that sends records to the systemd journal
// with every attribute as an upper-case journal field (MODULE, PID, SIGNAL...).
type JournalHandler struct {
	level  slog.Leveler
	fields map[string]string // fields from WithAttrs, already prefixed
	prefix string            // group prefix, e.g. "CHILD_"
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{
		level:  level,
		fields: make(map[string]string),
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle sends the log record to systemd journal.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	priority := mapLevelToPriority(r.Level)

	fields := make(map[string]string, len(h.fields)+r.NumAttrs()+2)
	for k, v := range h.fields {
		fields[k] = v
	}
	fields["SYSLOG_IDENTIFIER"] = SyslogIdentifier
	fields["SYSLOG_PID"] = strconv.Itoa(os.Getpid())

	r.Attrs(func(attr slog.Attr) bool {
		addAttrToFields(fields, h.prefix, attr)
		return true
	})

	if err := journal.Send(r.Message, priority, fields); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send to journal: %v\n", err)
		return err
	}
	return nil
}

// WithAttrs returns a new handler with additional attributes.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make(map[string]string, len(h.fields)+len(attrs))
	for k, v := range h.fields {
		fields[k] = v
	}
	for _, attr := range attrs {
		addAttrToFields(fields, h.prefix, attr)
	}
	return &JournalHandler{level: h.level, fields: fields, prefix: h.prefix}
}

// WithGroup returns a new handler with a group prefix.
func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &JournalHandler{
		level:  h.level,
		fields: h.fields,
		prefix: h.prefix + journalKey(name) + "_",
	}
}

// mapLevelToPriority maps slog levels to journal priorities.
func mapLevelToPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// addAttrToFields flattens an attribute into journal fields.
func addAttrToFields(fields map[string]string, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := prefix + journalKey(attr.Key)

	switch attr.Value.Kind() {
	case slog.KindGroup:
		for _, a := range attr.Value.Group() {
			addAttrToFields(fields, key+"_", a)
		}
	case slog.KindDuration:
		fields[key] = attr.Value.Duration().String()
	case slog.KindTime:
		fields[key] = attr.Value.Time().Format(time.RFC3339Nano)
	default:
		fields[key] = attr.Value.String()
	}
}

// journalKey converts an attribute key to a valid journal field name:
// upper case letters, digits and underscores.
func journalKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}

// IsJournalAvailable checks if systemd journal is available.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
