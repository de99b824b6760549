package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/dispatcher"
	"github.com/AdiechaHK/hooks/id"
)

const defaultEmissionLimit = 100

// emissionEntity is the msgpack model for an emission audit record.
type emissionEntity struct {
	ID        string        `msgpack:"id"`
	Name      string        `msgpack:"name"`
	Kind      string        `msgpack:"kind"`
	Listeners int           `msgpack:"listeners"`
	Elapsed   time.Duration `msgpack:"elapsed"`
	Cancelled bool          `msgpack:"cancelled"`
	Error     string        `msgpack:"error,omitempty"`
	EmittedAt time.Time     `msgpack:"emitted_at"`
	CreatedAt time.Time     `msgpack:"created_at"`
	UpdatedAt time.Time     `msgpack:"updated_at"`
}

// AppendEmission pushes one emission record onto the audit list and
// trims it to the configured cap.
func (s *Store) AppendEmission(ctx context.Context, e *dispatcher.Emission) error {
	data, err := msgpack.Marshal(&emissionEntity{
		ID:        e.ID.String(),
		Name:      e.Name,
		Kind:      string(e.Kind),
		Listeners: e.Listeners,
		Elapsed:   e.Elapsed,
		Cancelled: e.Cancelled,
		Error:     e.Error,
		EmittedAt: e.EmittedAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("hooks/redis: encode emission: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, emissionsKey, data)
	pipe.LTrim(ctx, emissionsKey, 0, int64(s.emissionCap)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("hooks/redis: append emission: %w", err)
	}
	return nil
}

// ListEmissions returns the most recent emission records, newest first.
// A limit of 0 applies the default of 100.
func (s *Store) ListEmissions(ctx context.Context, limit int) ([]*dispatcher.Emission, error) {
	if limit <= 0 {
		limit = defaultEmissionLimit
	}

	raw, err := s.rdb.LRange(ctx, emissionsKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("hooks/redis: list emissions: %w", err)
	}

	emissions := make([]*dispatcher.Emission, 0, len(raw))
	for _, item := range raw {
		var e emissionEntity
		if err := msgpack.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("hooks/redis: decode emission: %w", err)
		}

		eID, parseErr := id.ParseEmissionID(e.ID)
		if parseErr != nil {
			return nil, fmt.Errorf("hooks/redis: parse emission id: %w", parseErr)
		}

		emissions = append(emissions, &dispatcher.Emission{
			Entity: hooks.Entity{
				CreatedAt: e.CreatedAt,
				UpdatedAt: e.UpdatedAt,
			},
			ID:        eID,
			Name:      e.Name,
			Kind:      hooks.Kind(e.Kind),
			Listeners: e.Listeners,
			Elapsed:   e.Elapsed,
			Cancelled: e.Cancelled,
			Error:     e.Error,
			EmittedAt: e.EmittedAt,
		})
	}
	return emissions, nil
}
