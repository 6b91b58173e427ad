// Package cache holds the Redis client, listing cache keys and the token blacklist.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"capsort/internal/middleware"
	"capsort/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// errorHook counts failed commands. Cache misses (redis.Nil) are not failures.
type errorHook struct{}

func countFailure(label string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrors.WithLabelValues(label).Inc()
	}
}

func (errorHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

// NewClient builds a client for addr, which may be host:port or a redis:// URL.
// It does not dial.
func NewClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	rdb.AddHook(errorHook{})
	return rdb, nil
}

// InitRedis connects and pings. It returns nil when the address is invalid or
// Redis does not answer; callers then run without a cache.
func InitRedis(addr string) *redis.Client {
	rdb, err := NewClient(addr)
	if err != nil {
		middleware.Logger.Warn("invalid redis address, caching disabled", "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, caching disabled", "error", err)
		_ = rdb.Close()
		return nil
	}

	middleware.Logger.Info("redis connected", "addr", rdb.Options().Addr)
	return rdb
}
