// Package redis implements store.Store using Redis. Schedule entries
// are stored as msgpack-encoded values with a Set index for
// enumeration; emission audit records live in a capped List, newest
// first.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/AdiechaHK/hooks/dispatcher"
	"github.com/AdiechaHK/hooks/schedule"
)

// Compile-time interface checks.
var (
	_ schedule.Store   = (*Store)(nil)
	_ dispatcher.Store = (*Store)(nil)
)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithEmissionCap bounds how many emission audit records are retained.
func WithEmissionCap(n int) Option {
	return func(s *Store) { s.emissionCap = n }
}

// Store implements the composite store.Store interface backed by Redis.
type Store struct {
	rdb         redis.Cmdable
	logger      *slog.Logger
	emissionCap int
}

// defaultEmissionCap is how many emission records the audit list keeps
// when no cap is configured.
const defaultEmissionCap = 1000

// New creates a Redis-backed store. The caller owns the Redis client
// lifecycle.
func New(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{
		rdb:         client,
		logger:      slog.Default(),
		emissionCap: defaultEmissionCap,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Client returns the underlying Redis client.
func (s *Store) Client() redis.Cmdable { return s.rdb }

// Migrate is a no-op for Redis (schemaless).
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close is a no-op — the caller owns the Redis client lifecycle.
func (s *Store) Close() error { return nil }
