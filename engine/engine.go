// Package engine wires all hook subsystems together: registry,
// dispatcher, scheduler, extension loader, scope builder, and store.
//
// The engine package exists to break an import cycle: the root hooks
// package defines shared types (Kind, Meta, Config, the error
// sentinels) imported by every subsystem and therefore cannot import
// those subsystems back. Engine sits above all subsystem packages and
// below the host application.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/dispatcher"
	"github.com/AdiechaHK/hooks/extension"
	mw "github.com/AdiechaHK/hooks/middleware"
	"github.com/AdiechaHK/hooks/registry"
	"github.com/AdiechaHK/hooks/schedule"
	"github.com/AdiechaHK/hooks/scope"
	"github.com/AdiechaHK/hooks/store"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by all subsystems.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithConfig sets the engine configuration.
func WithConfig(cfg hooks.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithStore sets the persistence backend for schedule entries and
// emission audit records. Without a store the engine runs fully in
// memory with no audit trail.
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.st = s }
}

// WithMiddleware appends middleware to the listener invocation chain,
// after the default stack.
func WithMiddleware(mws ...mw.Middleware) Option {
	return func(e *Engine) { e.mws = append(e.mws, mws...) }
}

// WithServices sets the host service object handed to extension
// entrypoints through Capabilities. Opaque to the engine.
func WithServices(services any) Option {
	return func(e *Engine) { e.services = services }
}

// WithExtensionsDir sets the directory Start loads extensions from.
func WithExtensionsDir(dir string) Option {
	return func(e *Engine) { e.extDir = dir }
}

// WithTracerProvider sets a custom OTel TracerProvider for the tracing
// middleware. If not set, the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracerProvider = tp }
}

// WithMeterProvider sets a custom OTel MeterProvider for the metrics
// middleware. If not set, the global provider is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) { e.meterProvider = mp }
}

// Engine is the composition root. The host creates one Engine per
// process, loads extensions, then emits lifecycle events through it.
type Engine struct {
	cfg    hooks.Config
	logger *slog.Logger

	reg     *registry.Registry
	disp    *dispatcher.Dispatcher
	sched   *schedule.Scheduler
	loader  *extension.Loader
	builder *scope.Builder
	st      store.Store

	services any
	extDir   string
	mws      []mw.Middleware

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	mu          sync.Mutex
	started     bool
	loadResults []extension.LoadResult
}

const instrumentationName = "github.com/AdiechaHK/hooks"

// New creates an Engine and wires its subsystems.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:     hooks.DefaultConfig(),
		logger:  slog.Default(),
		reg:     registry.New(),
		builder: scope.NewBuilder(),
	}
	for _, opt := range opts {
		opt(e)
	}

	tracingMw := mw.Tracing()
	if e.tracerProvider != nil {
		tracingMw = mw.TracingWithTracer(e.tracerProvider.Tracer(instrumentationName))
	}
	metricsMw := mw.Metrics()
	if e.meterProvider != nil {
		metricsMw = mw.MetricsWithMeter(e.meterProvider.Meter(instrumentationName))
	}

	// Default stack: recover → tracing → metrics → logging → timeout,
	// then caller middleware.
	allMws := append([]mw.Middleware{
		mw.Recover(e.logger),
		tracingMw,
		metricsMw,
		mw.Logging(e.logger),
		mw.Timeout(e.logger),
	}, e.mws...)

	dispOpts := []dispatcher.Option{
		dispatcher.WithLogger(e.logger),
		dispatcher.WithConfig(e.cfg),
		dispatcher.WithMiddleware(allMws...),
	}
	if e.st != nil {
		dispOpts = append(dispOpts, dispatcher.WithStore(e.st))
	}
	e.disp = dispatcher.New(e.reg, dispOpts...)

	schedOpts := []schedule.Option{
		schedule.WithLogger(e.logger),
		schedule.WithTickInterval(e.cfg.TickInterval),
	}
	if e.st != nil {
		schedOpts = append(schedOpts, schedule.WithStore(e.st))
	}
	e.sched = schedule.NewScheduler(schedOpts...)

	e.loader = extension.NewLoader(
		extension.WithLogger(e.logger),
		extension.WithStrict(e.cfg.StrictLoad),
	)

	return e
}

// Registrar returns the registration surface for the named extension.
// Listeners and schedules created through it carry the extension name
// for logging and attribution. It satisfies extension.APIFactory.
func (e *Engine) Registrar(extName string) extension.RegistrationAPI {
	return &registrar{eng: e, ext: extName}
}

type registrar struct {
	eng *Engine
	ext string
}

func (r *registrar) Action(event string, fn registry.ActionFunc) error {
	_, err := r.eng.reg.RegisterAction(event, fn, registry.WithExtension(r.ext))
	return err
}

func (r *registrar) Filter(event string, fn registry.FilterFunc) error {
	_, err := r.eng.reg.RegisterFilter(event, fn, registry.WithExtension(r.ext))
	return err
}

func (r *registrar) Init(event string, fn registry.InitFunc) error {
	_, err := r.eng.reg.RegisterInit(event, fn, registry.WithExtension(r.ext))
	return err
}

func (r *registrar) Schedule(cronExpr string, fn schedule.Func) error {
	_, err := r.eng.sched.Register(cronExpr, fn, schedule.WithExtension(r.ext))
	return err
}

// Start migrates the store, loads extensions, and starts the scheduler.
// It emits the extensions.load.before and extensions.load.after init
// events around directory loading.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return hooks.ErrAlreadyStarted
	}

	if e.st != nil && !e.cfg.DisableMigrate {
		if err := e.st.Migrate(ctx); err != nil {
			return fmt.Errorf("engine: migrate store: %w", err)
		}
	}

	if e.extDir != "" {
		e.disp.EmitInit(ctx, "extensions.load.before", hooks.Meta{"dir": e.extDir})

		caps := hooks.Capabilities{Services: e.services}
		results, err := e.loader.LoadAll(ctx, e.extDir, e.Registrar, caps)
		e.loadResults = results
		if err != nil {
			return fmt.Errorf("engine: load extensions: %w", err)
		}

		var loaded, failed int
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
			case !r.Skipped:
				loaded++
			}
		}
		e.disp.EmitInit(ctx, "extensions.load.after", hooks.Meta{
			"dir":    e.extDir,
			"loaded": loaded,
			"failed": failed,
		})
	}

	if err := e.sched.Start(ctx); err != nil {
		return fmt.Errorf("engine: start scheduler: %w", err)
	}

	e.started = true
	listeners := e.reg.Count(hooks.KindAction) +
		e.reg.Count(hooks.KindFilter) +
		e.reg.Count(hooks.KindInit)
	e.logger.Info("hook engine started",
		slog.Int("listeners", listeners),
		slog.Int("schedules", len(e.sched.Entries())),
	)
	return nil
}

// Stop shuts the engine down: the scheduler stops and detached action
// listeners drain concurrently, then the store closes. Bounded by
// Config.ShutdownTimeout.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return hooks.ErrNotStarted
	}
	e.started = false

	if e.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ShutdownTimeout)
		defer cancel()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.sched.Stop(ctx) })
	g.Go(func() error { return e.disp.Drain(ctx) })
	err := g.Wait()

	if e.st != nil {
		if cerr := e.st.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("engine: close store: %w", cerr)
		}
	}

	e.logger.Info("hook engine stopped")
	return err
}

// ──────────────────────────────────────────────────
// Host emission surface
// ──────────────────────────────────────────────────

// EmitFilter folds registered filter listeners over payload. See
// dispatcher.EmitFilter.
func (e *Engine) EmitFilter(ctx context.Context, name string, payload any, meta hooks.Meta) (any, error) {
	ec, err := e.executionContext(ctx)
	if err != nil {
		return nil, err
	}
	return e.disp.EmitFilter(ctx, name, payload, meta, ec)
}

// EmitAction notifies registered action listeners. See
// dispatcher.EmitAction.
func (e *Engine) EmitAction(ctx context.Context, name string, meta hooks.Meta) error {
	ec, err := e.executionContext(ctx)
	if err != nil {
		return err
	}
	return e.disp.EmitAction(ctx, name, meta, ec)
}

// EmitInit notifies registered init listeners at a lifecycle point.
// Init events run outside any operation scope.
func (e *Engine) EmitInit(ctx context.Context, name string, meta hooks.Meta) {
	e.disp.EmitInit(ctx, name, meta)
}

// executionContext builds the per-invocation context object from the
// request scope on ctx. Emissions outside an operation scope run with a
// nil execution context rather than failing: server-level events have
// no transaction or accountability.
func (e *Engine) executionContext(ctx context.Context) (*scope.ExecutionContext, error) {
	if _, ok := scope.RequestFrom(ctx); !ok {
		return nil, nil
	}
	return e.builder.Build(ctx)
}

// ──────────────────────────────────────────────────
// Subsystem access
// ──────────────────────────────────────────────────

// Registry returns the listener registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Dispatcher returns the dispatcher.
func (e *Engine) Dispatcher() *dispatcher.Dispatcher { return e.disp }

// Scheduler returns the scheduler.
func (e *Engine) Scheduler() *schedule.Scheduler { return e.sched }

// Store returns the configured store, or nil.
func (e *Engine) Store() store.Store { return e.st }

// LoadResults returns the outcome of the extension load performed by
// Start, in directory order.
func (e *Engine) LoadResults() []extension.LoadResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadResults
}
