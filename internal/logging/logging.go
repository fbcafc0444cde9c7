// Package logging provides component-scoped structured loggers built on
// log/slog. There is no package-level logger: every component receives its
// logger at construction, so tests can pass a silent one and nothing hides
// behind process-wide state.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// ParseLevel maps a config string to a slog.Level. Unknown values fall back
// to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger for the named component, writing text to stderr.
func New(component string, level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, component, level)
}

// NewWriter is New with an explicit destination. Tests pass io.Discard or a
// buffer.
func NewWriter(w io.Writer, component string, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("component", component)
}

// Discard returns a logger that drops everything. Used as the default when a
// component is constructed without one.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
