package graph

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger attaches logger to ctx so that backends and providers called by
// nodes log with the attempt's attributes.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFrom returns the logger attached to ctx, or slog.Default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}
