package dispatcher

import (
	"context"
	"time"

	"github.com/AdiechaHK/hooks"
	"github.com/AdiechaHK/hooks/id"
)

// Emission is the audit record of one event dispatch. Created at
// emission time; persisted when a store is configured, discarded
// otherwise.
type Emission struct {
	hooks.Entity

	ID        id.EmissionID `json:"id"`
	Name      string        `json:"name"`
	Kind      hooks.Kind    `json:"kind"`
	Listeners int           `json:"listeners"`
	Elapsed   time.Duration `json:"elapsed"`
	Cancelled bool          `json:"cancelled"`
	Error     string        `json:"error,omitempty"`
	EmittedAt time.Time     `json:"emitted_at"`
}

// Store is the emission audit persistence interface. Implemented by the
// store backends alongside schedule.Store.
type Store interface {
	// AppendEmission persists one emission record.
	AppendEmission(ctx context.Context, e *Emission) error

	// ListEmissions returns the most recent emissions, newest first,
	// up to limit. A limit of 0 means backend default.
	ListEmissions(ctx context.Context, limit int) ([]*Emission, error)
}
