package cache_test

import (
	"context"
	"testing"

	"marketplace/internal/adapters/out/cache"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopStockCache_NeverHits(t *testing.T) {
	ctx := context.Background()
	c := cache.NoopStockCache{}
	id := kernel.NewUUID()

	require.NoError(t, c.Set(ctx, ports.DealSnapshot{ID: id.String()}))
	_, ok, err := c.Get(ctx, id)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, id))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "deal:snapshot:abc", cache.Key("abc"))
}

func TestRedisStockCache_SetRequiresID(t *testing.T) {
	c := cache.NewRedisStockCache(nil, 0, nil)

	assert.Error(t, c.Set(context.Background(), ports.DealSnapshot{}))
}

func TestRedisStockCache_InvalidateNothingSkipsRedis(t *testing.T) {
	c := cache.NewRedisStockCache(nil, 0, nil)

	assert.NoError(t, c.Invalidate(context.Background()))
}
