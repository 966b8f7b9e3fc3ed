package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisViewCache stores assembled owner item listings as JSON blobs with a
// short TTL.
type RedisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	return redis.NewClient(options)
}

func NewRedisViewCache(client *redis.Client, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{
		client: client,
		ttl:    ttl,
	}
}

func ownerItemsKey(ownerID int64) string {
	return fmt.Sprintf("owner_items:%d", ownerID)
}

// ownerItemsEntry is the persisted shape: the views plus the page size they
// were assembled for.
type ownerItemsEntry struct {
	Size  int               `json:"size"`
	Views []models.ItemView `json:"views"`
}

func (r *RedisViewCache) GetOwnerItems(ctx context.Context, ownerID int64, size int) ([]models.ItemView, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, ownerItemsKey(ownerID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get owner items from redis: %w", err)
	}

	var entry ownerItemsEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal owner items: %w", err)
	}
	if entry.Size != size {
		return nil, false, nil
	}
	return entry.Views, true, nil
}

func (r *RedisViewCache) SetOwnerItems(ctx context.Context, ownerID int64, size int, views []models.ItemView) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(ownerItemsEntry{Size: size, Views: views})
	if err != nil {
		return fmt.Errorf("failed to marshal owner items: %w", err)
	}
	if err := r.client.Set(ctx, ownerItemsKey(ownerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set owner items in redis: %w", err)
	}
	return nil
}

func (r *RedisViewCache) InvalidateOwner(ctx context.Context, ownerID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, ownerItemsKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to delete owner items from redis: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
