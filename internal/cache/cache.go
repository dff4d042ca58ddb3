// Package cache provides optional Redis-backed caching for public
// calendar responses and first-seen deduplication of view events.
// Every method degrades to a no-op when Redis is not configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps an optional Redis client.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a cache. rdb may be nil, in which case reads always miss
// and writes are dropped.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// PublicScheduleKey builds the cache key for one published month.
func PublicScheduleKey(slug string, month, year int) string {
	return fmt.Sprintf("public:%s:%04d-%02d", slug, year, month)
}

// ViewDedupKey builds the dedup key for one visitor on one day.
func ViewDedupKey(slug, ip, date string) string {
	return fmt.Sprintf("view:%s:%s:%s", slug, ip, date)
}

// GetJSON reads key into out. Returns false on miss, decode failure,
// or when Redis is absent.
func (c *Cache) GetJSON(ctx context.Context, key string, out any) bool {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

// SetJSON stores val under key with the configured TTL. Failures are
// silent; the cache is best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, val any) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Delete removes keys, used to invalidate published months on save.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

// Once reports whether key was seen for the first time within window.
// Without Redis every call reports first-seen, so views are recorded
// rather than lost.
func (c *Cache) Once(ctx context.Context, key string, window time.Duration) bool {
	if c == nil || c.rdb == nil {
		return true
	}
	ok, err := c.rdb.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		return true
	}
	return ok
}
