package registry

import (
	"context"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
	"github.com/AdiechaHK/hooks/scope"
)

// ActionFunc is the callback signature for action listeners. Actions
// observe a completed operation; return values are ignored by the
// dispatcher except for logging.
type ActionFunc func(ctx context.Context, meta hooks.Meta, ec *scope.ExecutionContext) error

// FilterFunc is the callback signature for filter listeners. Filters
// receive the current payload and return the next one; returning an
// error aborts the chain, and returning a hooks.CancelError cancels the
// enclosing host operation.
type FilterFunc func(ctx context.Context, payload any, meta hooks.Meta, ec *scope.ExecutionContext) (any, error)

// InitFunc is the callback signature for init listeners. Init events
// carry no payload and no execution context.
type InitFunc func(ctx context.Context, meta hooks.Meta) error

// Listener is a registered callback. Immutable once registered; owned
// by the Registry for the process lifetime.
type Listener struct {
	ID        id.ListenerID
	Kind      hooks.Kind
	Pattern   string
	Extension string

	// Seq is the global registration order, used to keep dispatch
	// deterministic within a pattern.
	Seq int

	// Timeout, when non-zero, bounds a single invocation of this
	// listener (enforced by the timeout middleware).
	Timeout time.Duration

	// Exactly one of the following is non-nil, matching Kind.
	Action ActionFunc
	Filter FilterFunc
	Init   InitFunc

	compiled pattern
}

// Option configures a Listener at registration time.
type Option func(*Listener)

// WithExtension stamps the registering extension's name on the listener
// for logging and attribution.
func WithExtension(name string) Option {
	return func(l *Listener) { l.Extension = name }
}

// WithTimeout bounds a single invocation of the listener.
func WithTimeout(d time.Duration) Option {
	return func(l *Listener) { l.Timeout = d }
}
