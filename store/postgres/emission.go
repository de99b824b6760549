package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/dispatcher"
	"github.com/AdiechaHK/hooks/id"
)

const defaultEmissionLimit = 100

// AppendEmission persists one emission audit record.
func (s *Store) AppendEmission(ctx context.Context, e *dispatcher.Emission) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO hooks_emissions (
			id, name, kind, listeners, elapsed_us, cancelled, error,
			emitted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID.String(), e.Name, string(e.Kind), e.Listeners,
		e.Elapsed.Microseconds(), e.Cancelled, e.Error,
		e.EmittedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("hooks/postgres: append emission: %w", err)
	}
	return nil
}

// ListEmissions returns the most recent emission records, newest first.
// A limit of 0 applies the default of 100.
func (s *Store) ListEmissions(ctx context.Context, limit int) ([]*dispatcher.Emission, error) {
	if limit <= 0 {
		limit = defaultEmissionLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, kind, listeners, elapsed_us, cancelled, error,
		       emitted_at, created_at, updated_at
		FROM hooks_emissions
		ORDER BY emitted_at DESC, id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("hooks/postgres: list emissions: %w", err)
	}
	defer rows.Close()

	var emissions []*dispatcher.Emission
	for rows.Next() {
		var (
			e         dispatcher.Emission
			idStr     string
			kindStr   string
			elapsedUS int64
		)
		if err := rows.Scan(
			&idStr, &e.Name, &kindStr, &e.Listeners, &elapsedUS,
			&e.Cancelled, &e.Error, &e.EmittedAt, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("hooks/postgres: scan emission row: %w", err)
		}

		parsedID, parseErr := id.ParseEmissionID(idStr)
		if parseErr != nil {
			return nil, fmt.Errorf("hooks/postgres: parse emission id %q: %w", idStr, parseErr)
		}
		e.ID = parsedID
		e.Kind = hooks.Kind(kindStr)
		e.Elapsed = time.Duration(elapsedUS) * time.Microsecond

		emissions = append(emissions, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("hooks/postgres: iterate emission rows: %w", err)
	}
	return emissions, nil
}
