package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"capsort/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// load reports whether key held a value that decoded into dest.
func load(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

func store(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

// Aside serves dest from key when cached. Otherwise fetch fills dest and the
// result is written back with ttl. Redis errors never fail the read, and a nil
// client always fetches. The bool reports a cache hit.
func Aside(ctx context.Context, rdb *redis.Client, key string, dest any, ttl time.Duration, fetch func() error) (bool, error) {
	if rdb == nil {
		return false, fetch()
	}

	hit, err := load(ctx, rdb, key, dest)
	if err == nil && hit {
		return true, nil
	}
	if err != nil {
		middleware.Logger.DebugContext(ctx, "cache read failed", "key", key, "error", err)
	}

	if err := fetch(); err != nil {
		return false, err
	}
	if err := store(ctx, rdb, key, dest, ttl); err != nil {
		middleware.Logger.DebugContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return false, nil
}
