// Package store defines the aggregate persistence interface. Each
// subsystem (schedule, dispatcher) defines its own store interface; the
// composite Store composes them all. Backends: Postgres, Redis, and
// Memory.
package store

import (
	"context"

	"github.com/AdiechaHK/hooks/dispatcher"
	"github.com/AdiechaHK/hooks/schedule"
)

// Store is the aggregate persistence interface. Each subsystem store is
// a composable interface; a single backend implements all of them.
type Store interface {
	schedule.Store
	dispatcher.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
