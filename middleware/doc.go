// Package middleware provides composable middleware for listener
// invocation.
//
// A [Middleware] is a function that wraps a listener invocation.
// Middleware are composed into a chain using [Chain] and applied around
// every listener call the dispatcher makes. They are applied
// right-to-left: the first middleware in the slice is the outermost
// wrapper.
//
//	// logging → recover → listener
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging] — logs event name, listener, duration, and outcome
//   - [Recover] — catches listener panics and converts them to errors
//   - [Timeout] — cancels the listener context after its configured deadline
//   - [Tracing] — wraps invocation in an OpenTelemetry span
//   - [Metrics] — records per-listener duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, l *registry.Listener, event string, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting. A cancellation signal returned by a filter listener
// must pass through middleware unmodified; never wrap or replace it.
package middleware
