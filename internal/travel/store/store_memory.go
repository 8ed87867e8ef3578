// Package store caches record snapshots and details in front of the backing
// store. Misses are reported with sentinel.ErrCacheMiss.
package store

import (
	"context"
	"sync"
	"time"

	"tabilog/internal/travel/models"
	"tabilog/pkg/platform/sentinel"
)

const DefaultTTL = time.Minute

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// InMemoryCache is the single-instance cache used when Redis is not
// configured.
type InMemoryCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	snapshot *entry[[]models.TravelRecordSummary]
	details  map[int64]entry[models.TravelDetail]
}

type MemoryOption func(*InMemoryCache)

// WithClock injects the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *InMemoryCache) {
		c.now = now
	}
}

func NewInMemoryCache(ttl time.Duration, opts ...MemoryOption) *InMemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &InMemoryCache{
		ttl:     ttl,
		now:     time.Now,
		details: make(map[int64]entry[models.TravelDetail]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *InMemoryCache) GetSnapshot(_ context.Context) ([]models.TravelRecordSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil || !c.now().Before(c.snapshot.expiresAt) {
		return nil, sentinel.ErrCacheMiss
	}
	return models.CloneRecords(c.snapshot.value), nil
}

func (c *InMemoryCache) PutSnapshot(_ context.Context, records []models.TravelRecordSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = &entry[[]models.TravelRecordSummary]{
		value:     models.CloneRecords(records),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *InMemoryCache) GetDetail(_ context.Context, id int64) (*models.TravelDetail, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.details[id]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, sentinel.ErrCacheMiss
	}
	d := e.value
	return &d, nil
}

func (c *InMemoryCache) PutDetail(_ context.Context, detail *models.TravelDetail) error {
	if detail == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details[detail.ID] = entry[models.TravelDetail]{value: *detail, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *InMemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	return nil
}
