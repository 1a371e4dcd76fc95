package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCacheFromClient(client)
	t.Cleanup(func() { cache.Close() })

	return cache, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "ens:addr:alice.eth", "0x742d", time.Minute))

	value, err := cache.Get(ctx, "ens:addr:alice.eth")
	require.NoError(t, err)
	assert.Equal(t, "0x742d", value)
}

func TestRedisCache_Get_MissIsNotAnError(t *testing.T) {
	cache, _ := setupTestCache(t)

	value, err := cache.Get(context.Background(), "missing-key")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	value, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestRedisCache_Hash(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.HSet(ctx, "splits:0xabc", "split-1", "QmHash1"))
	require.NoError(t, cache.HSet(ctx, "splits:0xabc", "split-2", "QmHash2"))

	value, err := cache.HGet(ctx, "splits:0xabc", "split-1")
	require.NoError(t, err)
	assert.Equal(t, "QmHash1", value)

	// Missing field is empty, not an error
	value, err = cache.HGet(ctx, "splits:0xabc", "split-9")
	require.NoError(t, err)
	assert.Empty(t, value)

	all, err := cache.HGetAll(ctx, "splits:0xabc")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
