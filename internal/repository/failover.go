package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// FailoverViewCache prefers the primary cache and trips to the fallback when
// the primary errors; the primary is retried after a minute.
type FailoverViewCache struct {
	primary   domain.ViewCache
	fallback  domain.ViewCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverViewCache(primary, fallback domain.ViewCache, logger *zerolog.Logger) *FailoverViewCache {
	return &FailoverViewCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverViewCache) markDown(err error) {
	f.logger.Error().Err(err).Msg("primary view cache failed, falling back to memory")
	f.isDown.Store(true)
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverViewCache) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, f.lastCheck.Load())) > time.Minute
}

func (f *FailoverViewCache) GetOwnerItems(ctx context.Context, ownerID int64, size int) ([]models.ItemView, bool, error) {
	if !f.isDown.Load() || f.shouldRetryPrimary() {
		views, ok, err := f.primary.GetOwnerItems(ctx, ownerID, size)
		if err == nil {
			f.isDown.Store(false)
			return views, ok, nil
		}
		f.markDown(err)
	}
	return f.fallback.GetOwnerItems(ctx, ownerID, size)
}

func (f *FailoverViewCache) SetOwnerItems(ctx context.Context, ownerID int64, size int, views []models.ItemView) error {
	if !f.isDown.Load() {
		err := f.primary.SetOwnerItems(ctx, ownerID, size, views)
		if err == nil {
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.SetOwnerItems(ctx, ownerID, size, views)
}

func (f *FailoverViewCache) InvalidateOwner(ctx context.Context, ownerID int64) error {
	// Invalidation goes to both sides: a stale entry surviving in either
	// cache would serve outdated bookings.
	var primaryErr error
	if !f.isDown.Load() {
		primaryErr = f.primary.InvalidateOwner(ctx, ownerID)
		if primaryErr != nil {
			f.markDown(primaryErr)
		}
	}
	return f.fallback.InvalidateOwner(ctx, ownerID)
}
