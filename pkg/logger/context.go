package logger

import (
	"context"
	"log/slog"
)

type loggerCtxKey struct{}

// With derives a context whose logger carries the extra fields. The request
// middleware stamps the trace ID this way once, and every downstream log
// line inherits it.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, From(ctx).With(fields...))
}

// From unwraps the request-scoped logger, falling back to the process-wide
// one when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
