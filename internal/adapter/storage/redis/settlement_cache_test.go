package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewSettlementCache(client)
	ctx := context.Background()

	key := "3f1e8a1c-0000-4000-8000-000000000001:PAY_IN:evt_abc"
	value := []byte(`{"id":"abc","status":"COMPLETED"}`)

	// Get before set => nil
	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Set
	err = cache.Set(ctx, key, value, 24*time.Hour)
	require.NoError(t, err)

	// Get after set
	result, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestSettlementCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewSettlementCache(client)
	ctx := context.Background()

	key := "3f1e8a1c-0000-4000-8000-000000000002:PAY_OUT:evt_def"
	value := []byte(`{"data":"test"}`)

	err := cache.Set(ctx, key, value, 1*time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestRateCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewRateCache(client)
	ctx := context.Background()

	result, err := cache.Get(ctx, "BTC")
	assert.NoError(t, err)
	assert.Nil(t, result)

	value := []byte(`{"asset":"BTC","price_usd":65000.25}`)
	err = cache.Set(ctx, "BTC", value, 5*time.Minute)
	require.NoError(t, err)

	result, err = cache.Get(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestRateCache_PrefixIsolation(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	ctx := context.Background()

	rates := NewRateCache(client)
	settlements := NewSettlementCache(client)

	require.NoError(t, rates.Set(ctx, "shared-key", []byte("rate"), time.Hour))
	require.NoError(t, settlements.Set(ctx, "shared-key", []byte("settlement"), time.Hour))

	got, err := rates.Get(ctx, "shared-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("rate"), got)

	got, err = settlements.Get(ctx, "shared-key")
	require.NoError(t, err)
	assert.Equal(t, []byte("settlement"), got)
}
