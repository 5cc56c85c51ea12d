// Package logctx threads a *slog.Logger through a context.Context,
// the pattern implied by (but not included in the retrieved slice of)
// listen.go, which calls Logger(ctx) without ever showing where that
// logger was attached.
package logctx

import (
	"context"

	"log/slog"
)

type key struct{}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, key{}, l)
}

// Logger returns the logger attached to ctx, or slog.Default() if
// none was attached.
func Logger(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(key{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}
