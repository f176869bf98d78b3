// Package logging provides the process-wide structured logger and the
// per-run log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger is the structured logger used by library code. Messages carry
// key/value attributes rather than formatted text.
type Logger struct {
	*slog.Logger
}

// Config controls where a Logger writes and what it keeps.
type Config struct {
	Level   slog.Level
	Output  io.Writer
	Enabled bool
}

// DefaultConfig logs warnings and errors to stderr. Library callers that want
// more opt in with Init.
func DefaultConfig() Config {
	return Config{
		Level:   LevelWarn,
		Output:  os.Stderr,
		Enabled: true,
	}
}

// New creates a text logger from cfg. A disabled config yields a logger
// that drops everything.
func New(cfg Config) *Logger {
	if !cfg.Enabled {
		return &Logger{Logger: slog.New(slog.DiscardHandler)}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{Logger: slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level}))}
}

// Component returns a logger whose records carry component=name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.With("component", name)}
}

var global atomic.Pointer[Logger]

// Global returns the process-wide logger, creating the default one on first
// use.
func Global() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	global.CompareAndSwap(nil, New(DefaultConfig()))
	return global.Load()
}

// SetGlobal replaces the process-wide logger. It is safe to call while other
// goroutines are logging.
func SetGlobal(logger *Logger) {
	if logger == nil {
		logger = Discard()
	}
	global.Store(logger)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Config{})
}

// Init points the process-wide logger at w, keeping records at level and
// above.
func Init(level slog.Level, w io.Writer) {
	SetGlobal(New(Config{Level: level, Output: w, Enabled: true}))
}

func Debug(msg string, args ...any) { Global().Debug(msg, args...) }
func Info(msg string, args ...any)  { Global().Info(msg, args...) }
func Warn(msg string, args ...any)  { Global().Warn(msg, args...) }
func Error(msg string, args ...any) { Global().Error(msg, args...) }
