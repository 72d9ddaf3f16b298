package featsearch

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with search-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTarget adds the target name to the logger.
func (l *Logger) WithTarget(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("target", name),
	}
}

// WithGeneration adds a generation field to the logger.
func (l *Logger) WithGeneration(gen int) *Logger {
	return &Logger{
		Logger: l.Logger.With("generation", gen),
	}
}

// LogFeed logs the outcome of a Run.
func (l *Logger) LogFeed(ctx context.Context, target string, accepted int, interrupted bool, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "search run failed",
			"target", target,
			"accepted", accepted,
			"error", err,
		)
	case interrupted:
		l.WarnContext(ctx, "search run interrupted",
			"target", target,
			"accepted", accepted,
		)
	default:
		l.InfoContext(ctx, "search run completed",
			"target", target,
			"accepted", accepted,
		)
	}
}

// LogCheckpoint logs a checkpoint write.
func (l *Logger) LogCheckpoint(ctx context.Context, blob string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"blob", blob,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "checkpoint saved",
			"blob", blob,
		)
	}
}

// LogRecovery logs the state found when a search is opened.
func (l *Logger) LogRecovery(ctx context.Context, queued int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search recovery failed",
			"queued_feeds", queued,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "search recovery completed",
			"queued_feeds", queued,
		)
	}
}

// LogTarget logs the target a search works on.
func (l *Logger) LogTarget(ctx context.Context, name string, remaining int) {
	if name == "" {
		l.InfoContext(ctx, "targets exhausted")
		return
	}
	l.InfoContext(ctx, "target benchmark",
		"name", name,
		"remaining", remaining,
	)
}
