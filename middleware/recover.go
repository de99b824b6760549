package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/AdiechaHK/hooks/registry"
)

// Recover returns middleware that recovers from panics in the listener.
// Panics are converted to errors and logged with a stack trace, so one
// misbehaving listener cannot take down the emitting operation.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, l *registry.Listener, event string, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("listener panicked",
					slog.String("event", event),
					slog.String("listener_id", l.ID.String()),
					slog.String("extension", l.Extension),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic in listener for %s: %v", event, r)
			}
		}()
		return next(ctx)
	}
}
