// Package memory implements store.Store fully in memory. Safe for
// concurrent access. Intended for unit testing and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/dispatcher"
	"github.com/AdiechaHK/hooks/id"
	"github.com/AdiechaHK/hooks/schedule"
)

// Ensure Store implements every subsystem interface at compile time.
var (
	_ schedule.Store   = (*Store)(nil)
	_ dispatcher.Store = (*Store)(nil)
)

// defaultEmissionLimit is returned by ListEmissions when limit is 0.
const defaultEmissionLimit = 100

// Store is a fully in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	schedules map[string]*schedule.Entry
	emissions []*dispatcher.Emission
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		schedules: make(map[string]*schedule.Entry),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle — Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Schedule Store
// ──────────────────────────────────────────────────

// SaveSchedule upserts a schedule entry.
func (m *Store) SaveSchedule(_ context.Context, e *schedule.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *e
	m.schedules[e.ID.String()] = &cp
	return nil
}

// GetSchedule retrieves an entry by ID.
func (m *Store) GetSchedule(_ context.Context, entryID id.ScheduleID) (*schedule.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.schedules[entryID.String()]
	if !ok {
		return nil, hooks.ErrScheduleNotFound
	}
	cp := *e
	return &cp, nil
}

// ListSchedules returns all entries sorted by ID (K-sortable, so this
// is creation order).
func (m *Store) ListSchedules(_ context.Context) ([]*schedule.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*schedule.Entry, 0, len(m.schedules))
	for _, e := range m.schedules {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// UpdateScheduleRun records a fired trigger.
func (m *Store) UpdateScheduleRun(_ context.Context, entryID id.ScheduleID, lastRun time.Time, nextRun *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.schedules[entryID.String()]
	if !ok {
		return hooks.ErrScheduleNotFound
	}
	e.LastRunAt = &lastRun
	e.NextRunAt = nextRun
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteSchedule removes an entry.
func (m *Store) DeleteSchedule(_ context.Context, entryID id.ScheduleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.schedules[entryID.String()]; !ok {
		return hooks.ErrScheduleNotFound
	}
	delete(m.schedules, entryID.String())
	return nil
}

// ──────────────────────────────────────────────────
// Dispatcher Store (emission audit)
// ──────────────────────────────────────────────────

// AppendEmission persists one emission record.
func (m *Store) AppendEmission(_ context.Context, e *dispatcher.Emission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *e
	m.emissions = append(m.emissions, &cp)
	return nil
}

// ListEmissions returns the most recent emissions, newest first.
func (m *Store) ListEmissions(_ context.Context, limit int) ([]*dispatcher.Emission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = defaultEmissionLimit
	}

	n := len(m.emissions)
	if limit > n {
		limit = n
	}

	out := make([]*dispatcher.Emission, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *m.emissions[i]
		out = append(out, &cp)
	}
	return out, nil
}
