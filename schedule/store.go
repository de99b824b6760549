package schedule

import (
	"context"
	"time"

	"github.com/AdiechaHK/hooks/id"
)

// Store is the schedule entry persistence interface. When configured,
// entries and their run bookkeeping survive restarts; callbacks are
// always re-bound by extensions at load time.
type Store interface {
	// SaveSchedule upserts a schedule entry.
	SaveSchedule(ctx context.Context, e *Entry) error

	// GetSchedule retrieves an entry by ID.
	GetSchedule(ctx context.Context, entryID id.ScheduleID) (*Entry, error)

	// ListSchedules returns all entries.
	ListSchedules(ctx context.Context) ([]*Entry, error)

	// UpdateScheduleRun records a fired trigger: LastRunAt and the
	// recomputed NextRunAt.
	UpdateScheduleRun(ctx context.Context, entryID id.ScheduleID, lastRun time.Time, nextRun *time.Time) error

	// DeleteSchedule removes an entry.
	DeleteSchedule(ctx context.Context, entryID id.ScheduleID) error
}
