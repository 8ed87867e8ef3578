package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tabilog/internal/travel/models"
	"tabilog/pkg/platform/sentinel"
)

const (
	snapshotKey     = "tabilog:travels:snapshot"
	detailKeyPrefix = "tabilog:travels:detail:"
)

// RedisCache shares record snapshots and details across instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetSnapshot(ctx context.Context) ([]models.TravelRecordSummary, error) {
	var records []models.TravelRecordSummary
	if err := c.get(ctx, snapshotKey, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *RedisCache) PutSnapshot(ctx context.Context, records []models.TravelRecordSummary) error {
	return c.set(ctx, snapshotKey, records)
}

func (c *RedisCache) GetDetail(ctx context.Context, id int64) (*models.TravelDetail, error) {
	var d models.TravelDetail
	if err := c.get(ctx, detailKey(id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *RedisCache) PutDetail(ctx context.Context, detail *models.TravelDetail) error {
	if detail == nil {
		return nil
	}
	return c.set(ctx, detailKey(detail.ID), detail)
}

// Invalidate drops the snapshot so the next read refetches it.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("redis del: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return sentinel.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// a stale layout is as good as absent
		return sentinel.ErrCacheMiss
	}
	return nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	return nil
}

func detailKey(id int64) string {
	return detailKeyPrefix + strconv.FormatInt(id, 10)
}
