package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// errNotFound marks a missing entity internally; callers translate it
// into the appropriate hooks sentinel.
var errNotFound = errors.New("hooks/redis: entity not found")

// setEntity msgpack-encodes v and stores it at key.
func (s *Store) setEntity(ctx context.Context, key string, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, 0).Err()
}

// getEntity loads and msgpack-decodes the entity at key into v.
func (s *Store) getEntity(ctx context.Context, key string, v any) error {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if isRedisNil(err) {
			return errNotFound
		}
		return err
	}
	return msgpack.Unmarshal(data, v)
}

// entityExists reports whether an entity is stored at key.
func (s *Store) entityExists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// isRedisNil reports whether err is the go-redis missing-key error.
func isRedisNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// isNotFound reports whether err marks a missing entity.
func isNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

// now returns the current UTC time.
func now() time.Time { return time.Now().UTC() }
