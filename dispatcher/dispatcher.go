// Package dispatcher executes emitted events against the registered
// listeners. It implements the three emission semantics:
//
//   - Filters fold left-to-right over the payload; a cancellation
//     signal aborts the chain and the enclosing host operation.
//   - Actions are observational; failures are logged and isolated,
//     and may run detached from the emitting caller.
//   - Init events carry no payload and never cancel.
//
// Every listener invocation runs through the configured middleware
// chain. When a store is configured, each dispatch appends an Emission
// audit record.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
	"github.com/AdiechaHK/hooks/middleware"
	"github.com/AdiechaHK/hooks/registry"
	"github.com/AdiechaHK/hooks/scope"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithConfig sets the dispatch configuration.
func WithConfig(cfg hooks.Config) Option {
	return func(d *Dispatcher) { d.cfg = cfg }
}

// WithStore enables emission auditing through the given store.
func WithStore(s Store) Option {
	return func(d *Dispatcher) { d.store = s }
}

// WithMiddleware appends middleware to the listener invocation chain.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(d *Dispatcher) { d.mws = append(d.mws, mws...) }
}

// Dispatcher looks up matching listeners for an emitted event and
// invokes them in dispatch order. One Dispatcher serves the whole
// process; emissions from concurrent operations are independent.
type Dispatcher struct {
	cfg    hooks.Config
	logger *slog.Logger
	reg    *registry.Registry
	store  Store
	mws    []middleware.Middleware
	chain  middleware.Middleware

	// limiter bounds detached action launches.
	limiter *rate.Limiter

	// wg tracks detached action invocations for Drain.
	wg sync.WaitGroup
}

// New creates a Dispatcher over the given registry.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    hooks.DefaultConfig(),
		logger: slog.Default(),
		reg:    reg,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.chain = middleware.Chain(d.mws...)

	if d.cfg.ActionRateLimit > 0 {
		burst := d.cfg.ActionRateBurst
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(d.cfg.ActionRateLimit, burst)
	}

	return d
}

// EmitFilter folds matching filter listeners left-to-right over payload:
// each receives the previous listener's returned payload. The first
// error stops the chain and propagates; a cancellation signal
// (hooks.CancelError) additionally aborts the enclosing host operation,
// whose transaction the host rolls back.
func (d *Dispatcher) EmitFilter(ctx context.Context, name string, payload any, meta hooks.Meta, ec *scope.ExecutionContext) (any, error) {
	listeners := d.reg.Lookup(hooks.KindFilter, name)
	start := time.Now()

	current := payload
	for _, l := range listeners {
		err := d.chain(ctx, l, name, func(ctx context.Context) error {
			next, ferr := l.Filter(ctx, current, meta, ec)
			if ferr != nil {
				return ferr
			}
			current = next
			return nil
		})
		if err != nil {
			d.audit(ctx, name, hooks.KindFilter, len(listeners), time.Since(start), err)
			return nil, err
		}
	}

	d.audit(ctx, name, hooks.KindFilter, len(listeners), time.Since(start), nil)
	return current, nil
}

// EmitAction invokes matching action listeners, ignoring return values.
// In sequential mode listeners run in the caller's goroutine; failures
// are logged and isolated unless Config.PropagateActionErrors is set,
// in which case the first error is returned and remaining listeners are
// skipped. In detached mode each listener runs in its own goroutine and
// EmitAction returns immediately.
func (d *Dispatcher) EmitAction(ctx context.Context, name string, meta hooks.Meta, ec *scope.ExecutionContext) error {
	listeners := d.reg.Lookup(hooks.KindAction, name)
	start := time.Now()

	if d.cfg.ActionMode == hooks.ActionDetached {
		// Detach from the caller's cancellation but keep context values
		// (scope, trace) for the listener.
		bg := context.WithoutCancel(ctx)
		for _, l := range listeners {
			d.wg.Add(1)
			go d.runDetached(bg, l, name, meta, ec)
		}
		d.audit(ctx, name, hooks.KindAction, len(listeners), time.Since(start), nil)
		return nil
	}

	for _, l := range listeners {
		err := d.invokeAction(ctx, l, name, meta, ec)
		if err != nil {
			d.logListenerError(name, l, err)
			if d.cfg.PropagateActionErrors {
				d.audit(ctx, name, hooks.KindAction, len(listeners), time.Since(start), err)
				return err
			}
		}
	}

	d.audit(ctx, name, hooks.KindAction, len(listeners), time.Since(start), nil)
	return nil
}

// EmitInit invokes matching init listeners at a lifecycle point.
// No payload, no execution context, no cancellation: failures are
// logged and never propagated.
func (d *Dispatcher) EmitInit(ctx context.Context, name string, meta hooks.Meta) {
	listeners := d.reg.Lookup(hooks.KindInit, name)
	start := time.Now()

	for _, l := range listeners {
		err := d.chain(ctx, l, name, func(ctx context.Context) error {
			return l.Init(ctx, meta)
		})
		if err != nil {
			d.logListenerError(name, l, err)
		}
	}

	d.audit(ctx, name, hooks.KindInit, len(listeners), time.Since(start), nil)
}

// Drain waits for in-flight detached action listeners to finish, or for
// ctx to expire, whichever comes first.
func (d *Dispatcher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) runDetached(ctx context.Context, l *registry.Listener, name string, meta hooks.Meta, ec *scope.ExecutionContext) {
	defer d.wg.Done()

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			d.logListenerError(name, l, err)
			return
		}
	}

	if err := d.invokeAction(ctx, l, name, meta, ec); err != nil {
		d.logListenerError(name, l, err)
	}
}

func (d *Dispatcher) invokeAction(ctx context.Context, l *registry.Listener, name string, meta hooks.Meta, ec *scope.ExecutionContext) error {
	return d.chain(ctx, l, name, func(ctx context.Context) error {
		return l.Action(ctx, meta, ec)
	})
}

// logListenerError logs an isolated listener failure. Action and init
// failures never reach the emitting caller by default.
func (d *Dispatcher) logListenerError(event string, l *registry.Listener, err error) {
	d.logger.Warn("listener error",
		slog.String("event", event),
		slog.String("kind", l.Kind.String()),
		slog.String("listener_id", l.ID.String()),
		slog.String("extension", l.Extension),
		slog.String("error", err.Error()),
	)
}

// audit appends an emission record when a store is configured. Audit
// failures are logged, never propagated: auditing must not affect
// dispatch semantics.
func (d *Dispatcher) audit(ctx context.Context, name string, kind hooks.Kind, listeners int, elapsed time.Duration, dispatchErr error) {
	if d.store == nil {
		return
	}

	now := time.Now().UTC()
	e := &Emission{
		Entity:    hooks.Entity{CreatedAt: now, UpdatedAt: now},
		ID:        id.NewEmissionID(),
		Name:      name,
		Kind:      kind,
		Listeners: listeners,
		Elapsed:   elapsed,
		EmittedAt: now,
	}
	if dispatchErr != nil {
		e.Error = dispatchErr.Error()
		e.Cancelled = hooks.IsCancel(dispatchErr)
	}

	if err := d.store.AppendEmission(ctx, e); err != nil {
		d.logger.Warn("emission audit failed",
			slog.String("event", name),
			slog.String("error", err.Error()),
		)
	}
}
