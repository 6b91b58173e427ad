package middleware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"capsort/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be asked.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// CodeRateLimited marks a 429 response.
const CodeRateLimited = "RATE_LIMITED"

var errNoRedis = errors.New("rate limit store not configured")

// limitsOff is true for local and test environments.
func limitsOff() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "dev":
		return true
	}
	return false
}

func rateKey(resource, id string) string {
	return "rl:" + resource + ":" + id
}

// CheckRateLimit counts one hit for id against resource in a fixed window
// and reports whether it is within limit. The window starts at the first hit.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if limitsOff() {
		return true, nil
	}
	if rdb == nil {
		return false, errNoRedis
	}

	key := rateKey(resource, id)
	var hits *redis.IntCmd
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		hits = p.Incr(ctx, key)
		p.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return hits.Val() <= int64(limit), nil
}

// callerID keys limits by user for authenticated requests and by IP otherwise.
func callerID(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(uint); ok && uid != 0 {
		return fmt.Sprintf("user:%d", uid)
	}
	return "ip:" + c.IP()
}

// RateLimit allows limit requests per window for one resource, failing open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, resource string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, resource)
}

// RateLimitWithPolicy is RateLimit with an explicit FailPolicy. An empty
// resource uses the request path.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := resource
		if name == "" {
			name = c.Path()
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, name, callerID(c), limit, window)
		switch {
		case err != nil && policy == FailClosed:
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable", "resource", name, "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: "Rate limiting unavailable",
				Code:  models.CodeInternal,
			})
		case err != nil:
			return c.Next()
		case !allowed:
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests",
				Code:  CodeRateLimited,
			})
		}
		return c.Next()
	}
}
