package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCacheWithClient(client, DefaultConfig())
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestNewRedisCacheWithConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	cache, err := NewRedisCacheWithConfig(cfg)
	require.NoError(t, err)
	defer cache.Close()
}

func TestNewRedisCacheWithConfig_ConnectionError(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Addr = "localhost:99999"
	_, err := NewRedisCacheWithConfig(cfg)
	assert.Error(t, err)
}

func TestNewSelectsRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(Options{Backend: BackendRedis, RedisAddr: mr.Addr(), Config: DefaultConfig()})
	require.NoError(t, err)
	require.IsType(t, &RedisCache{}, c)
	c.(*RedisCache).Close()
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "things", []byte("snapshot"), time.Minute))

	got, err := cache.Get(ctx, "things")
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot"), got)
	assert.True(t, mr.Exists("shapec:snapshot:things"))
}

func TestRedisCache_GetMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	_, err := cache.Get(context.Background(), "missing")
	assert.True(t, IsCacheMiss(err))
}

func TestRedisCache_TTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, 24*time.Hour, mr.TTL("shapec:snapshot:k"))

	mr.FastForward(25 * time.Hour)
	_, err := cache.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, cache.Set(ctx, "forever", []byte("v"), -1))
	assert.Zero(t, mr.TTL("shapec:snapshot:forever"))
}

func TestRedisCache_DeleteExistsClear(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:key", "kept"))
	require.NoError(t, mr.Set("shapec:lock", "kept"))
	require.NoError(t, cache.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), time.Minute))

	exists, err := cache.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "a"))
	exists, err = cache.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, mr.Exists("shapec:snapshot:b"))
	assert.True(t, mr.Exists("other:key"))
	assert.True(t, mr.Exists("shapec:lock"))
}

func TestRedisCache_ClearRemovesEverySnapshot(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 2*clearBatch+3; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("svc-%03d", i), []byte("x"), time.Minute))
	}
	require.NoError(t, mr.Set("shapec:other", "kept"))

	require.NoError(t, cache.Clear(ctx))
	assert.Equal(t, []string{"shapec:other"}, mr.Keys())
}
