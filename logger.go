package kcluster

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with kcluster-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a point count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogIteration logs one assignment pass.
func (l *Logger) LogIteration(ctx context.Context, stats IterationStats) {
	l.DebugContext(ctx, "iteration completed",
		"iteration", stats.Iteration,
		"moved", stats.Moved,
		"empty", stats.Empty,
		"total_distance", stats.TotalDistance,
		"inertia", stats.Inertia,
		"duration", stats.Duration,
	)
}

// LogEmptyCluster logs a cluster that received no members.
func (l *Logger) LogEmptyCluster(ctx context.Context, iteration, cluster int, policy EmptyClusterPolicy) {
	l.WarnContext(ctx, "empty cluster",
		"iteration", iteration,
		"cluster", cluster,
		"policy", policy.String(),
	)
}

// LogCluster logs the end of a Cluster call.
func (l *Logger) LogCluster(ctx context.Context, res *Result, err error) {
	switch {
	case err != nil && res == nil:
		l.ErrorContext(ctx, "clustering failed",
			"error", err,
		)
	case err != nil:
		l.WarnContext(ctx, "clustering stopped before convergence",
			"iterations", res.Iterations,
			"total_distance", res.TotalDistance,
			"error", err,
		)
	default:
		l.InfoContext(ctx, "clustering converged",
			"iterations", res.Iterations,
			"total_distance", res.TotalDistance,
		)
	}
}
