package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleViews() []models.ItemView {
	return []models.ItemView{
		{ID: 1, Name: "Drill", Available: true, Comments: []models.CommentView{}},
		{ID: 2, Name: "Saw", Available: false, Comments: []models.CommentView{}},
	}
}

func newMiniredisCache(t *testing.T) (*RedisViewCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisViewCache(client, 30*time.Second), mr
}

func TestRedisViewCache(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := context.Background()

	_, ok, err := cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetOwnerItems(ctx, 7, 10, sampleViews()))

	views, ok, err := cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleViews(), views)

	// An entry built for one page size does not answer another.
	_, ok, err = cache.GetOwnerItems(ctx, 7, 20)
	require.NoError(t, err)
	assert.False(t, ok)

	// Expiry drops the entry.
	mr.FastForward(time.Minute)
	_, ok, err = cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetOwnerItems(ctx, 7, 10, sampleViews()))
	require.NoError(t, cache.InvalidateOwner(ctx, 7))
	_, ok, err = cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryViewCacheTTL(t *testing.T) {
	cache := NewMemoryViewCache(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.SetOwnerItems(ctx, 7, 10, sampleViews()))
	views, ok, err := cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, views, 2)

	_, ok, err = cache.GetOwnerItems(ctx, 7, 20)
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(80 * time.Millisecond)
	_, ok, err = cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetOwnerItems(ctx, 8, 10, sampleViews()))
	require.NoError(t, cache.InvalidateOwner(ctx, 8))
	_, ok, _ = cache.GetOwnerItems(ctx, 8, 10)
	assert.False(t, ok)
}

// brokenCache always errors, standing in for an unreachable Redis.
type brokenCache struct{}

func (brokenCache) GetOwnerItems(ctx context.Context, ownerID int64, size int) ([]models.ItemView, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenCache) SetOwnerItems(ctx context.Context, ownerID int64, size int, views []models.ItemView) error {
	return errors.New("connection refused")
}

func (brokenCache) InvalidateOwner(ctx context.Context, ownerID int64) error {
	return errors.New("connection refused")
}

func TestFailoverViewCache(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryViewCache(30 * time.Second)
	cache := NewFailoverViewCache(brokenCache{}, fallback, &logger)
	ctx := context.Background()

	// Writes land in the fallback once the primary trips.
	require.NoError(t, cache.SetOwnerItems(ctx, 7, 10, sampleViews()))

	views, ok, err := cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleViews(), views)

	require.NoError(t, cache.InvalidateOwner(ctx, 7))
	_, ok, err = cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailoverPrefersHealthyPrimary(t *testing.T) {
	logger := zerolog.Nop()
	primary, _ := newMiniredisCache(t)
	fallback := NewMemoryViewCache(30 * time.Second)
	cache := NewFailoverViewCache(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, cache.SetOwnerItems(ctx, 7, 10, sampleViews()))

	// The entry went to the primary, not the fallback.
	_, ok, err := fallback.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	views, ok, err := cache.GetOwnerItems(ctx, 7, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, views, 2)
}
