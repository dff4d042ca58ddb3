package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, time.Minute), mr
}

func TestGetSetJSON(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var out payload
	assert.False(t, c.GetJSON(ctx, "missing", &out))

	c.SetJSON(ctx, "k", payload{Name: "shop", Count: 3})
	require.True(t, c.GetJSON(ctx, "k", &out))
	assert.Equal(t, "shop", out.Name)
	assert.Equal(t, 3, out.Count)
}

func TestDeleteInvalidates(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, "k", map[string]int{"v": 1})
	c.Delete(ctx, "k")

	var out map[string]int
	assert.False(t, c.GetJSON(ctx, "k", &out))
}

func TestOnceDeduplicates(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	key := ViewDedupKey("my-shop", "1.2.3.4", "2025-06-15")
	assert.True(t, c.Once(ctx, key, time.Hour))
	assert.False(t, c.Once(ctx, key, time.Hour))

	// Expired keys count as first-seen again.
	mr.FastForward(2 * time.Hour)
	assert.True(t, c.Once(ctx, key, time.Hour))
}

func TestNilClientDegrades(t *testing.T) {
	c := New(nil, time.Minute)
	ctx := context.Background()

	var out map[string]int
	assert.False(t, c.GetJSON(ctx, "k", &out))
	c.SetJSON(ctx, "k", map[string]int{"v": 1})
	c.Delete(ctx, "k")

	// Without Redis every view is recorded rather than lost.
	assert.True(t, c.Once(ctx, "dedup", time.Hour))
	assert.True(t, c.Once(ctx, "dedup", time.Hour))
}

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "public:my-shop:2025-06", PublicScheduleKey("my-shop", 6, 2025))
	assert.Equal(t, "view:my-shop:1.2.3.4:2025-06-15", ViewDedupKey("my-shop", "1.2.3.4", "2025-06-15"))
}
