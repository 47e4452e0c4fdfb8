package nilmap

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with container-specific helpers.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContainer adds a container kind field to the logger (useful for
// telling apart the maps and sets sharing one logger).
func (l *Logger) WithContainer(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("container", kind),
	}
}

// LogResize logs a capacity change of the sparse engine.
func (l *Logger) LogResize(oldCapacity, newCapacity, size int) {
	l.Debug("resized",
		"old_capacity", oldCapacity,
		"new_capacity", newCapacity,
		"size", size,
	)
}

// LogStrategySwitch logs a storage-strategy switch.
func (l *Logger) LogStrategySwitch(from, to Strategy, size int) {
	l.Debug("strategy switch",
		"from", from.String(),
		"to", to.String(),
		"size", size,
	)
}

// LogTrim logs an explicit capacity trim.
func (l *Logger) LogTrim(newCapacity, size int) {
	l.Debug("trimmed",
		"new_capacity", newCapacity,
		"size", size,
	)
}

// LogClear logs a full reset.
func (l *Logger) LogClear(size int) {
	l.Debug("cleared",
		"previous_size", size,
	)
}
