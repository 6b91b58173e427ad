package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"capsort/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	ListingVersionKey   = "listing:version"
	ListingKeyPrefix    = "listing:v%d:guest:%s"
	BlacklistKeyPrefix  = "blacklist:%s"
	DefaultListingTTL   = time.Minute
	blacklistMinimumTTL = time.Second
)

// ListingKey identifies one cached guest listing page. Filters that select the
// same rows map to the same key.
func ListingKey(version int64, f models.ProjectFilter) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	if f.Search != "" {
		v.Set("search", strings.ToLower(f.Search))
	}
	if f.Field != "" {
		v.Set("field", f.Field)
	}
	if f.Year != nil {
		v.Set("year", strconv.Itoa(*f.Year))
	}
	if f.YearFrom != nil {
		v.Set("yearFrom", strconv.Itoa(*f.YearFrom))
	}
	if f.YearTo != nil {
		v.Set("yearTo", strconv.Itoa(*f.YearTo))
	}
	return fmt.Sprintf(ListingKeyPrefix, version, v.Encode())
}

// ListingVersion returns the current listing generation, 0 when unset.
func ListingVersion(ctx context.Context, rdb *redis.Client) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	n, err := rdb.Get(ctx, ListingVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// BumpListingVersion moves every cached listing out of reach. Old pages
// expire on their own TTL.
func BumpListingVersion(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Incr(ctx, ListingVersionKey).Err()
}

// BlacklistKey is the revocation marker for a token ID.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

// Blacklist revokes jti until ttl elapses.
func Blacklist(ctx context.Context, rdb *redis.Client, jti string, ttl time.Duration) error {
	if rdb == nil {
		return errors.New("redis client is nil")
	}
	if ttl < blacklistMinimumTTL {
		ttl = blacklistMinimumTTL
	}
	return rdb.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsBlacklisted reports whether jti was revoked.
func IsBlacklisted(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
