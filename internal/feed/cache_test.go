package feed

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheRoundTripAndTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	var got []cachedPost
	hit, err := cache.Get(ctx, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []cachedPost{{ID: 2, Content: "Nowy post"}, {ID: 1, Content: "Stary post"}}
	require.NoError(t, cache.Set(ctx, want))
	assert.True(t, mr.Exists(DefaultKey))
	assert.Equal(t, time.Minute, mr.TTL(DefaultKey))

	hit, err = cache.Get(ctx, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	mr.FastForward(2 * time.Minute)
	hit, err = cache.Get(ctx, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheInvalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, []cachedPost{{ID: 1}}))
	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists(DefaultKey))

	// Invalidating an empty cache is fine.
	require.NoError(t, cache.Invalidate(ctx))
}

func TestCacheCorruptDocument(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set(DefaultKey, "{not json"))

	var got []cachedPost
	hit, err := cache.Get(context.Background(), &got)
	require.Error(t, err)
	assert.False(t, hit)
}

func TestCacheRedisDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	var got []cachedPost
	_, err := cache.Get(context.Background(), &got)
	require.Error(t, err)
	require.Error(t, cache.Set(context.Background(), got))
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	var got []cachedPost
	hit, err := cache.Get(context.Background(), &got)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, cache.Set(context.Background(), got))
	require.NoError(t, cache.Invalidate(context.Background()))
}
