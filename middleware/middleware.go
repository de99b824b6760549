package middleware

import (
	"context"

	"github.com/AdiechaHK/hooks/registry"
)

// Handler is the terminal function that invokes the listener callback.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, the listener being invoked, the emitted event name,
// and the next handler to call. Middleware MUST call next to continue
// the chain (unless short-circuiting on error).
type Middleware func(ctx context.Context, l *registry.Listener, event string, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover, timeout) executes as:
//
//	logging → recover → timeout → listener
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, l *registry.Listener, event string, next Handler) error {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, l, event, prev)
			}
		}
		return h(ctx)
	}
}
