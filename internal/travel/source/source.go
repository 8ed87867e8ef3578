// Package source provides the record collections queries run over: a fixture
// set for offline use and a remote set backed by the backing store. Both
// implement RecordSource, so the query pipeline never branches on the mode.
package source

import (
	"context"

	"tabilog/internal/travel/models"
	"tabilog/internal/travel/transport"
)

const (
	KindFixture = "fixture"
	KindRemote  = "remote"
)

// RecordSource yields record snapshots and single-record details. Snapshot
// returns a slice the caller owns. Detail reports unknown ids with an error
// wrapping sentinel.ErrNotFound.
type RecordSource interface {
	Kind() string
	Snapshot(ctx context.Context) ([]models.TravelRecordSummary, error)
	Detail(ctx context.Context, id int64) (*models.TravelDetail, error)
}

// Cache stores snapshots and details between fetches. Misses are reported
// with sentinel.ErrCacheMiss; any other error means the cache is unusable.
type Cache interface {
	GetSnapshot(ctx context.Context) ([]models.TravelRecordSummary, error)
	PutSnapshot(ctx context.Context, records []models.TravelRecordSummary) error
	GetDetail(ctx context.Context, id int64) (*models.TravelDetail, error)
	PutDetail(ctx context.Context, detail *models.TravelDetail) error
	Invalidate(ctx context.Context) error
}

// Backend is the part of the transport client the remote source needs.
type Backend interface {
	List(ctx context.Context, params models.SearchFilterParams) (*transport.ListPage, error)
	Detail(ctx context.Context, id int64) (*models.TravelDetail, error)
}
