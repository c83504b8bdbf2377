// Package logger configures structured logging for the CLI and API server.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents logging level.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format represents logging format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logger configuration.
type Config struct {
	Level  Level
	Format Format
	// Output defaults to stderr so command output on stdout stays clean.
	Output io.Writer
}

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(level Level) slog.Level {
	switch strings.ToUpper(string(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a new Logger.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.ToLower(string(cfg.Format)) == string(FormatJSON) {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// SetDefault sets this logger as the default slog logger.
func (l *Logger) SetDefault() {
	slog.SetDefault(l.Logger)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
