package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
	"github.com/AdiechaHK/hooks/schedule"
)

// SaveSchedule upserts a schedule entry.
func (s *Store) SaveSchedule(ctx context.Context, e *schedule.Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hooks_schedules (
			id, cron, extension, last_run_at, next_run_at, enabled,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			cron        = EXCLUDED.cron,
			extension   = EXCLUDED.extension,
			last_run_at = EXCLUDED.last_run_at,
			next_run_at = EXCLUDED.next_run_at,
			enabled     = EXCLUDED.enabled,
			updated_at  = NOW()`,
		e.ID.String(), e.Cron, e.Extension, e.LastRunAt, e.NextRunAt, e.Enabled,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("hooks/postgres: save schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves an entry by ID.
func (s *Store) GetSchedule(ctx context.Context, entryID id.ScheduleID) (*schedule.Entry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, cron, extension, last_run_at, next_run_at, enabled,
		       created_at, updated_at
		FROM hooks_schedules
		WHERE id = $1`,
		entryID.String(),
	)

	e, err := scanSchedule(row)
	if err != nil {
		if isNoRows(err) {
			return nil, hooks.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("hooks/postgres: get schedule: %w", err)
	}
	return e, nil
}

// ListSchedules returns all entries in creation order.
func (s *Store) ListSchedules(ctx context.Context) ([]*schedule.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, cron, extension, last_run_at, next_run_at, enabled,
		       created_at, updated_at
		FROM hooks_schedules
		ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("hooks/postgres: list schedules: %w", err)
	}
	defer rows.Close()

	var entries []*schedule.Entry
	for rows.Next() {
		e, scanErr := scanSchedule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("hooks/postgres: scan schedule row: %w", scanErr)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("hooks/postgres: iterate schedule rows: %w", err)
	}
	return entries, nil
}

// UpdateScheduleRun records a fired trigger.
func (s *Store) UpdateScheduleRun(ctx context.Context, entryID id.ScheduleID, lastRun time.Time, nextRun *time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE hooks_schedules
		SET last_run_at = $2, next_run_at = $3, updated_at = NOW()
		WHERE id = $1`,
		entryID.String(), lastRun, nextRun,
	)
	if err != nil {
		return fmt.Errorf("hooks/postgres: update schedule run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return hooks.ErrScheduleNotFound
	}
	return nil
}

// DeleteSchedule removes an entry by ID.
func (s *Store) DeleteSchedule(ctx context.Context, entryID id.ScheduleID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM hooks_schedules WHERE id = $1`, entryID.String())
	if err != nil {
		return fmt.Errorf("hooks/postgres: delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return hooks.ErrScheduleNotFound
	}
	return nil
}

// scanSchedule scans a single schedule entry row.
func scanSchedule(row pgx.Row) (*schedule.Entry, error) {
	var (
		e     schedule.Entry
		idStr string
	)
	err := row.Scan(
		&idStr, &e.Cron, &e.Extension, &e.LastRunAt, &e.NextRunAt, &e.Enabled,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedID, parseErr := id.ParseScheduleID(idStr)
	if parseErr != nil {
		return nil, fmt.Errorf("hooks/postgres: parse schedule id %q: %w", idStr, parseErr)
	}
	e.ID = parsedID

	return &e, nil
}
