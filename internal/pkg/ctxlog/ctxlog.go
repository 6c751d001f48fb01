// Package ctxlog carries a request-scoped slog.Logger through a context.
package ctxlog

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithLogger returns a context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, falling back to
// slog.Default() when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}
