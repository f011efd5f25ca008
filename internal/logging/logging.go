// Package logging wraps charmbracelet/log behind the small keyvals API the
// rest of croft logs through. Components take a *Logger and fall back to
// Nop when handed nil, so library code never has to guard its log calls.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Config controls logger construction.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Empty means "info".
	Level string

	// Prefix is prepended to every line when set.
	Prefix string

	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer

	// ReportTimestamp includes a timestamp on each line.
	ReportTimestamp bool
}

// DefaultConfig returns the configuration used by the croft CLI.
func DefaultConfig() Config {
	return Config{
		Level:           "info",
		ReportTimestamp: true,
	}
}

// Logger emits structured key-value log lines.
type Logger struct {
	l *log.Logger
}

// New creates a Logger from cfg.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := log.NewWithOptions(out, log.Options{
		ReportTimestamp: cfg.ReportTimestamp,
		Prefix:          cfg.Prefix,
		Level:           parseLevel(cfg.Level),
	})
	return &Logger{l: l}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	l := log.NewWithOptions(io.Discard, log.Options{})
	return &Logger{l: l}
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// With returns a logger that attaches keyvals to every line it emits.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{l: l.l.With(keyvals...)}
}

// Debug logs msg with keyvals at debug level.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.l.Debug(msg, keyvals...)
}

// Info logs msg with keyvals at info level.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.l.Info(msg, keyvals...)
}

// Warn logs msg with keyvals at warn level.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.l.Warn(msg, keyvals...)
}

// Error logs msg with keyvals at error level.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.l.Error(msg, keyvals...)
}
