package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/models"
)

type memoryEntry struct {
	size      int
	views     []models.ItemView
	expiresAt time.Time
}

// MemoryViewCache is the in-process fallback cache.
type MemoryViewCache struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	ttl     time.Duration
}

func NewMemoryViewCache(ttl time.Duration) *MemoryViewCache {
	return &MemoryViewCache{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemoryViewCache) GetOwnerItems(ctx context.Context, ownerID int64, size int) ([]models.ItemView, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[ownerID]
	m.mu.RUnlock()
	if !ok || entry.size != size || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.views, true, nil
}

func (m *MemoryViewCache) SetOwnerItems(ctx context.Context, ownerID int64, size int, views []models.ItemView) error {
	m.mu.Lock()
	m.entries[ownerID] = memoryEntry{size: size, views: views, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryViewCache) InvalidateOwner(ctx context.Context, ownerID int64) error {
	m.mu.Lock()
	delete(m.entries, ownerID)
	m.mu.Unlock()
	return nil
}
