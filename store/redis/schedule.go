package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
	"github.com/AdiechaHK/hooks/schedule"
)

// scheduleEntity is the msgpack model for a schedule entry.
type scheduleEntity struct {
	ID        string     `msgpack:"id"`
	Cron      string     `msgpack:"cron"`
	Extension string     `msgpack:"extension"`
	LastRunAt *time.Time `msgpack:"last_run_at,omitempty"`
	NextRunAt *time.Time `msgpack:"next_run_at,omitempty"`
	Enabled   bool       `msgpack:"enabled"`
	CreatedAt time.Time  `msgpack:"created_at"`
	UpdatedAt time.Time  `msgpack:"updated_at"`
}

func toScheduleEntity(e *schedule.Entry) *scheduleEntity {
	return &scheduleEntity{
		ID:        e.ID.String(),
		Cron:      e.Cron,
		Extension: e.Extension,
		LastRunAt: e.LastRunAt,
		NextRunAt: e.NextRunAt,
		Enabled:   e.Enabled,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromScheduleEntity(e *scheduleEntity) (*schedule.Entry, error) {
	eID, err := id.ParseScheduleID(e.ID)
	if err != nil {
		return nil, fmt.Errorf("hooks/redis: parse schedule id: %w", err)
	}

	return &schedule.Entry{
		Entity: hooks.Entity{
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		},
		ID:        eID,
		Cron:      e.Cron,
		Extension: e.Extension,
		LastRunAt: e.LastRunAt,
		NextRunAt: e.NextRunAt,
		Enabled:   e.Enabled,
	}, nil
}

// SaveSchedule upserts a schedule entry.
func (s *Store) SaveSchedule(ctx context.Context, entry *schedule.Entry) error {
	eID := entry.ID.String()

	if err := s.setEntity(ctx, scheduleKey(eID), toScheduleEntity(entry)); err != nil {
		return fmt.Errorf("hooks/redis: save schedule: %w", err)
	}
	if err := s.rdb.SAdd(ctx, scheduleIDsKey, eID).Err(); err != nil {
		return fmt.Errorf("hooks/redis: save schedule index: %w", err)
	}
	return nil
}

// GetSchedule retrieves an entry by ID.
func (s *Store) GetSchedule(ctx context.Context, entryID id.ScheduleID) (*schedule.Entry, error) {
	var e scheduleEntity
	if err := s.getEntity(ctx, scheduleKey(entryID.String()), &e); err != nil {
		if isNotFound(err) {
			return nil, hooks.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("hooks/redis: get schedule: %w", err)
	}
	return fromScheduleEntity(&e)
}

// ListSchedules returns all entries sorted by ID (K-sortable, so this
// is creation order).
func (s *Store) ListSchedules(ctx context.Context) ([]*schedule.Entry, error) {
	ids, err := s.rdb.SMembers(ctx, scheduleIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("hooks/redis: list schedules: %w", err)
	}
	sort.Strings(ids)

	entries := make([]*schedule.Entry, 0, len(ids))
	for _, eID := range ids {
		var e scheduleEntity
		if getErr := s.getEntity(ctx, scheduleKey(eID), &e); getErr != nil {
			continue
		}
		entry, convErr := fromScheduleEntity(&e)
		if convErr != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// UpdateScheduleRun records a fired trigger.
func (s *Store) UpdateScheduleRun(ctx context.Context, entryID id.ScheduleID, lastRun time.Time, nextRun *time.Time) error {
	key := scheduleKey(entryID.String())

	var e scheduleEntity
	if err := s.getEntity(ctx, key, &e); err != nil {
		if isNotFound(err) {
			return hooks.ErrScheduleNotFound
		}
		return fmt.Errorf("hooks/redis: update schedule run get: %w", err)
	}

	e.LastRunAt = &lastRun
	e.NextRunAt = nextRun
	e.UpdatedAt = now()
	if err := s.setEntity(ctx, key, &e); err != nil {
		return fmt.Errorf("hooks/redis: update schedule run set: %w", err)
	}
	return nil
}

// DeleteSchedule removes an entry by ID.
func (s *Store) DeleteSchedule(ctx context.Context, entryID id.ScheduleID) error {
	eID := entryID.String()
	key := scheduleKey(eID)

	exists, err := s.entityExists(ctx, key)
	if err != nil {
		return fmt.Errorf("hooks/redis: delete schedule exists: %w", err)
	}
	if !exists {
		return hooks.ErrScheduleNotFound
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, scheduleIDsKey, eID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("hooks/redis: delete schedule: %w", err)
	}
	return nil
}
