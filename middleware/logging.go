package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/registry"
)

// Logging returns middleware that logs listener invocation and outcome.
// A cancellation signal is logged at info level: it is control flow,
// not a failure.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, l *registry.Listener, event string, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		switch {
		case err == nil:
			logger.Debug("listener completed",
				slog.String("event", event),
				slog.String("kind", l.Kind.String()),
				slog.String("extension", l.Extension),
				slog.Duration("elapsed", elapsed),
			)
		case hooks.IsCancel(err):
			logger.Info("listener cancelled operation",
				slog.String("event", event),
				slog.String("extension", l.Extension),
				slog.Duration("elapsed", elapsed),
				slog.String("reason", err.Error()),
			)
		default:
			logger.Error("listener failed",
				slog.String("event", event),
				slog.String("kind", l.Kind.String()),
				slog.String("extension", l.Extension),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		}

		return err
	}
}
