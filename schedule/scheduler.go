// Package schedule adapts cron expressions into recurring trigger ticks.
//
// Expressions are validated at registration time with robfig/cron
// (standard five-field syntax plus descriptors like "@every 30s").
// Callbacks run asynchronously off the tick loop; a tick of an entry is
// skipped while the prior invocation of that entry is still in flight.
// Stop cancels pending triggers and waits for in-flight invocations to
// complete, bounded by the caller's context.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
)

// cronParser supports standard 5-field cron and descriptors like "@every 30s".
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression and returns the schedule.
// Malformed expressions fail with hooks.ErrInvalidCron.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("schedule: parse %q: %v: %w", expr, err, hooks.ErrInvalidCron)
	}
	return sched, nil
}

// Validate checks a cron expression without registering anything.
func Validate(expr string) error {
	_, err := ParseSchedule(expr)
	return err
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTickInterval sets how often the scheduler checks for due entries.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.tickInterval = d }
}

// WithStore enables entry persistence through the given store.
func WithStore(store Store) Option {
	return func(s *Scheduler) { s.store = store }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// boundEntry pairs a registered Entry with its parsed schedule, its
// callback, and the in-flight flag guarding against overlapping runs.
type boundEntry struct {
	entry   *Entry
	sched   cronlib.Schedule
	fn      Func
	running bool
}

// Scheduler runs registered entries on a tick loop.
type Scheduler struct {
	logger       *slog.Logger
	store        Store
	tickInterval time.Duration

	mu      sync.Mutex
	entries map[string]*boundEntry

	stopCh  chan struct{}
	loopWG  sync.WaitGroup
	runWG   sync.WaitGroup
	started bool
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:       slog.Default(),
		tickInterval: 1 * time.Second,
		entries:      make(map[string]*boundEntry),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the cron expression and registers the callback.
// Validation happens before any tick: a malformed expression never
// produces a trigger. The callback is invoked with no arguments beyond
// a background-derived context.
func (s *Scheduler) Register(cronExpr string, fn Func, opts ...EntryOption) (*Entry, error) {
	sched, err := ParseSchedule(cronExpr)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	next := sched.Next(now)
	e := &Entry{
		Entity:    hooks.Entity{CreatedAt: now, UpdatedAt: now},
		ID:        id.NewScheduleID(),
		Cron:      cronExpr,
		NextRunAt: &next,
		Enabled:   true,
	}
	for _, opt := range opts {
		opt(e)
	}

	s.mu.Lock()
	s.entries[e.ID.String()] = &boundEntry{entry: e, sched: sched, fn: fn}
	s.mu.Unlock()

	if s.store != nil {
		if saveErr := s.store.SaveSchedule(context.Background(), e); saveErr != nil {
			s.logger.Warn("persist schedule entry failed",
				slog.String("schedule_id", e.ID.String()),
				slog.String("error", saveErr.Error()),
			)
		}
	}

	s.logger.Info("schedule registered",
		slog.String("schedule_id", e.ID.String()),
		slog.String("cron", cronExpr),
		slog.String("extension", e.Extension),
		slog.Time("next_run_at", next),
	)
	return e, nil
}

// Entries returns a snapshot of all registered entries.
func (s *Scheduler) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Entry, 0, len(s.entries))
	for _, be := range s.entries {
		cp := *be.entry
		out = append(out, &cp)
	}
	return out
}

// Start launches the tick loop.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return hooks.ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	s.loopWG.Add(1)
	go s.tickLoop()

	s.logger.Info("scheduler started",
		slog.Duration("tick_interval", s.tickInterval),
	)
	return nil
}

// Stop cancels pending triggers and waits for in-flight invocations to
// complete, bounded by ctx. Pending (not yet fired) triggers are
// dropped; in-flight callbacks are allowed to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	close(s.stopCh)
	s.loopWG.Wait()

	done := make(chan struct{})
	go func() {
		s.runWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stopped with in-flight invocations abandoned")
		return ctx.Err()
	}
}

// tickLoop fires on each tick interval and processes due entries.
func (s *Scheduler) tickLoop() {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	now := time.Now().UTC()

	s.mu.Lock()
	var due []*boundEntry
	for _, be := range s.entries {
		if !be.entry.Enabled {
			continue
		}
		if be.entry.NextRunAt == nil || be.entry.NextRunAt.After(now) {
			continue
		}
		next := be.sched.Next(now)
		if be.running {
			// Prior invocation still in flight: skip this tick and
			// advance to the next occurrence.
			be.entry.NextRunAt = &next
			s.logger.Debug("schedule tick skipped, prior invocation in flight",
				slog.String("schedule_id", be.entry.ID.String()),
			)
			continue
		}
		be.running = true
		last := now
		be.entry.LastRunAt = &last
		be.entry.NextRunAt = &next
		be.entry.UpdatedAt = now
		due = append(due, be)
	}
	s.mu.Unlock()

	for _, be := range due {
		s.fire(be, now)
	}
}

func (s *Scheduler) fire(be *boundEntry, now time.Time) {
	if s.store != nil {
		if err := s.store.UpdateScheduleRun(context.Background(), be.entry.ID, now, be.entry.NextRunAt); err != nil {
			s.logger.Warn("update schedule run failed",
				slog.String("schedule_id", be.entry.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	s.runWG.Add(1)
	go func() {
		defer s.runWG.Done()
		defer func() {
			s.mu.Lock()
			be.running = false
			s.mu.Unlock()
		}()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled callback panicked",
					slog.String("schedule_id", be.entry.ID.String()),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		if err := be.fn(context.Background()); err != nil {
			// Errors never cancel the schedule.
			s.logger.Error("scheduled callback error",
				slog.String("schedule_id", be.entry.ID.String()),
				slog.String("cron", be.entry.Cron),
				slog.String("extension", be.entry.Extension),
				slog.String("error", err.Error()),
			)
		}
	}()
}
