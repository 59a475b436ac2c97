package stream

import (
	"context"

	"github.com/hupe1980/llmstream/core"
	"github.com/hupe1980/llmstream/logging"
)

type contextKey int

const (
	runIDKey contextKey = iota
	loggerKey
)

// WithRunID returns a context carrying the given run identifier. The id
// travels with every pull of a bound sequence so producers and log output
// can correlate chunks to a logical run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// NewRunContext attaches a freshly generated run id to ctx and returns both.
func NewRunContext(ctx context.Context) (context.Context, string) {
	id := core.NewID()
	return WithRunID(ctx, id), id
}

// RunIDFrom extracts the run identifier from ctx, if any.
func RunIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok
}

// WithLogger returns a context carrying a logger for pull-scoped diagnostics.
func WithLogger(ctx context.Context, logger logging.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFrom extracts the logger from ctx, falling back to a no-op logger.
func LoggerFrom(ctx context.Context) logging.Logger {
	if l, ok := ctx.Value(loggerKey).(logging.Logger); ok {
		return l
	}
	return logging.NoOpLogger{}
}
