package podcast

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger attaches a job-scoped logger to ctx. Pipeline stages log
// through Logger(ctx) so concurrent jobs never share a printer.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
