package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"tabilog/internal/travel/metrics"
	"tabilog/internal/travel/models"
	"tabilog/internal/travel/transport"
	"tabilog/pkg/platform/circuit"
	"tabilog/pkg/platform/sentinel"
)

const (
	defaultPageSize = 100
	defaultMaxPages = 50
)

// Remote assembles snapshots from the backing store's paged list endpoint.
// Concurrent fetches of the same key share one round trip. When the backing
// store keeps failing, the last good snapshot is served instead.
type Remote struct {
	backend  Backend
	cache    Cache
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	pageSize int
	maxPages int

	group singleflight.Group

	mu       sync.RWMutex
	lastGood []models.TravelRecordSummary
}

type RemoteOption func(*Remote)

// WithCache puts a snapshot/detail cache in front of the backing store.
func WithCache(c Cache) RemoteOption {
	return func(r *Remote) {
		r.cache = c
	}
}

func WithBreaker(b *circuit.Breaker) RemoteOption {
	return func(r *Remote) {
		r.breaker = b
	}
}

func WithLogger(logger *slog.Logger) RemoteOption {
	return func(r *Remote) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) RemoteOption {
	return func(r *Remote) {
		r.metrics = m
	}
}

// WithPageSize sets the limit used when paging through the list endpoint.
func WithPageSize(n int) RemoteOption {
	return func(r *Remote) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

func NewRemote(backend Backend, opts ...RemoteOption) *Remote {
	r := &Remote{
		backend:  backend,
		breaker:  circuit.New("backing-store", circuit.WithFailureThreshold(3)),
		logger:   slog.Default(),
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Remote) Kind() string { return KindRemote }

func (r *Remote) Snapshot(ctx context.Context) ([]models.TravelRecordSummary, error) {
	if r.cache != nil {
		records, err := r.cache.GetSnapshot(ctx)
		switch {
		case err == nil:
			r.metrics.IncCacheLookup("snapshot", "hit")
			return records, nil
		case errors.Is(err, sentinel.ErrCacheMiss):
			r.metrics.IncCacheLookup("snapshot", "miss")
		default:
			r.metrics.IncCacheLookup("snapshot", "error")
			r.logger.WarnContext(ctx, "snapshot cache unavailable, bypassing", "error", err)
		}
	}

	v, err, _ := r.group.Do("snapshot", func() (any, error) {
		return r.fetchAll(context.WithoutCancel(ctx))
	})
	if err != nil {
		return r.fallback(ctx, err)
	}
	records := v.([]models.TravelRecordSummary)
	return models.CloneRecords(records), nil
}

func (r *Remote) fetchAll(ctx context.Context) ([]models.TravelRecordSummary, error) {
	limit := r.pageSize
	var all []models.TravelRecordSummary
	for page := 1; page <= r.maxPages; page++ {
		res, err := r.backend.List(ctx, models.SearchFilterParams{Page: &page, Limit: &limit})
		if err != nil {
			r.metrics.IncSourceFetch(KindRemote, string(transport.CategoryOf(err)))
			r.breaker.RecordFailure()
			return nil, err
		}
		all = append(all, res.Records...)
		if len(res.Records) == 0 || page >= res.Meta.LastPage {
			break
		}
	}
	if all == nil {
		all = []models.TravelRecordSummary{}
	}

	r.metrics.IncSourceFetch(KindRemote, "ok")
	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.logger.InfoContext(ctx, "backing store recovered")
	}

	r.mu.Lock()
	r.lastGood = all
	r.mu.Unlock()

	if r.cache != nil {
		if err := r.cache.PutSnapshot(ctx, all); err != nil {
			r.logger.WarnContext(ctx, "failed to cache snapshot", "error", err)
		}
	}
	return all, nil
}

// fallback serves the last good snapshot once the breaker is open.
func (r *Remote) fallback(ctx context.Context, err error) ([]models.TravelRecordSummary, error) {
	if !r.breaker.IsOpen() {
		return nil, err
	}
	r.mu.RLock()
	stale := r.lastGood
	r.mu.RUnlock()
	if stale == nil {
		return nil, err
	}
	r.metrics.IncStaleServed()
	r.logger.WarnContext(ctx, "backing store failing, serving last good snapshot",
		"records", len(stale),
		"open_since", r.breaker.OpenedAt(),
		"error", err,
	)
	return models.CloneRecords(stale), nil
}

func (r *Remote) Detail(ctx context.Context, id int64) (*models.TravelDetail, error) {
	if r.cache != nil {
		d, err := r.cache.GetDetail(ctx, id)
		switch {
		case err == nil:
			r.metrics.IncCacheLookup("detail", "hit")
			return d, nil
		case errors.Is(err, sentinel.ErrCacheMiss):
			r.metrics.IncCacheLookup("detail", "miss")
		default:
			r.metrics.IncCacheLookup("detail", "error")
			r.logger.WarnContext(ctx, "detail cache unavailable, bypassing", "id", id, "error", err)
		}
	}

	v, err, _ := r.group.Do("detail:"+strconv.FormatInt(id, 10), func() (any, error) {
		return r.backend.Detail(context.WithoutCancel(ctx), id)
	})
	if err != nil {
		r.metrics.IncSourceFetch(KindRemote, string(transport.CategoryOf(err)))
		if transport.CategoryOf(err) == transport.CategoryNotFound {
			return nil, fmt.Errorf("travel %d: %w: %w", id, sentinel.ErrNotFound, err)
		}
		return nil, err
	}
	d := v.(*models.TravelDetail)
	r.metrics.IncSourceFetch(KindRemote, "ok")

	if r.cache != nil {
		if err := r.cache.PutDetail(ctx, d); err != nil {
			r.logger.WarnContext(ctx, "failed to cache detail", "id", id, "error", err)
		}
	}
	out := *d
	return &out, nil
}

// Invalidate drops the cached snapshot, e.g. after a successful submission.
func (r *Remote) Invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		r.logger.WarnContext(ctx, "failed to invalidate snapshot cache", "error", err)
	}
}
