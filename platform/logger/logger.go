// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment, writing to w.
func New(env string, w io.Writer) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// OpenFile opens path for appending, creating it if needed.
// The caller owns the returned file.
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// WithRunID returns a logger with the batch run ID
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("run_id", runID)),
	}
}

// WithFile returns a logger with the input file name
func (l *Logger) WithFile(name string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("file", name)),
	}
}

// PhoneStandardized logs one written output number
func (l *Logger) PhoneStandardized(name, number string) {
	l.Info("phone_standardized",
		slog.String("name", name),
		slog.String("number", number),
	)
}

// PhoneUnparseable logs a number that could not be parsed
func (l *Logger) PhoneUnparseable(candidate string, err error) {
	l.Warn("phone_unparseable",
		slog.String("candidate", candidate),
		slog.String("error", err.Error()),
	)
}

// NoPhone logs a row without any phone number
func (l *Logger) NoPhone(name string, line int) {
	l.Info("no_phone_number",
		slog.String("name", name),
		slog.Int("line", line),
	)
}

// FileFailed logs a file that was skipped
func (l *Logger) FileFailed(path string, kind string, err error) {
	l.Error("file_failed",
		slog.String("path", path),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
}
