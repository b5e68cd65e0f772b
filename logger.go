package csrgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with csrgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithGraph adds a graph name field to the logger.
func (l *Logger) WithGraph(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("graph", name),
	}
}

// WithPath adds a file path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogBuild logs a CSR construction.
func (l *Logger) LogBuild(ctx context.Context, vertices, edges int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"vertices", vertices,
			"edges", edges,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"vertices", vertices,
			"edges", edges,
			"duration", d,
		)
	}
}

// LogOpen logs opening an image.
func (l *Logger) LogOpen(ctx context.Context, path string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "image opened",
			"path", path,
			"bytes", bytes,
		)
	}
}

// LogSave logs writing an image or edge list.
func (l *Logger) LogSave(ctx context.Context, path string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "image saved",
			"path", path,
			"bytes", bytes,
		)
	}
}
