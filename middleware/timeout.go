package middleware

import (
	"context"
	"log/slog"

	"github.com/AdiechaHK/hooks/registry"
)

// Timeout returns middleware that enforces a per-listener deadline.
// If the listener has a non-zero Timeout, a context.WithTimeout wraps
// the invocation. When the deadline is exceeded the context is
// cancelled and the listener should return context.DeadlineExceeded.
func Timeout(logger *slog.Logger) Middleware {
	return func(ctx context.Context, l *registry.Listener, event string, next Handler) error {
		if l.Timeout > 0 {
			logger.Debug("listener timeout set",
				slog.String("event", event),
				slog.String("listener_id", l.ID.String()),
				slog.Duration("timeout", l.Timeout),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.Timeout)
			defer cancel()
		}
		return next(ctx)
	}
}
