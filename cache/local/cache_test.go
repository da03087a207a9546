package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *LocalCache {
	c, err := NewCache(Config{GCInterval: time.Minute})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestGetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "key1", "value1", 0)
	require.NoError(t, err)

	v, err := c.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, "value1", v)
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "ttl_key", "val", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, err = c.Get(ctx, "ttl_key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "k", "v", 0)
	_ = c.Del(ctx, "k")
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExists(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "k", "v", 0)
	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.Exists(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetNX(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "lock", "owner", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "lock", "other", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok) // already held
}

func TestExpire(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", "v", 0)
	require.NoError(t, c.Expire(ctx, "k", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestZSetRanking(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.ZAdd(ctx, "rank", 10, "a"))
	require.NoError(t, c.ZAdd(ctx, "rank", 30, "b"))
	require.NoError(t, c.ZAdd(ctx, "rank", 20, "c"))

	top, err := c.ZRevRange(ctx, "rank", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, top)

	all, err := c.ZRevRange(ctx, "rank", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, all)

	score, err := c.ZScore(ctx, "rank", "c")
	require.NoError(t, err)
	assert.Equal(t, float64(20), score)
}

func TestZAddUpdatesScore(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.ZAdd(ctx, "rank", 1, "a")
	_ = c.ZAdd(ctx, "rank", 100, "a")

	score, err := c.ZScore(ctx, "rank", "a")
	require.NoError(t, err)
	assert.Equal(t, float64(100), score)

	members, err := c.ZRevRange(ctx, "rank", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, members)
}

func TestZScoreMissing(t *testing.T) {
	c := newTestCache(t)
	_, err := c.ZScore(context.Background(), "rank", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
