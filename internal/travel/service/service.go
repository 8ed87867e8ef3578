// Package service is the retrieval facade: it runs the query pipeline over
// whichever record source is configured and translates source failures into
// domain errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tabilog/internal/travel/metrics"
	"tabilog/internal/travel/models"
	"tabilog/internal/travel/query"
	"tabilog/internal/travel/source"
	"tabilog/internal/travel/transport"
	dErrors "tabilog/pkg/domain-errors"
	"tabilog/pkg/platform/sentinel"
)

const (
	defaultPrefetchLimit = 4
	// MaxPrefetchIDs bounds one batch detail request.
	MaxPrefetchIDs = 50
)

// Service serves list and detail queries.
type Service struct {
	source        source.RecordSource
	logger        *slog.Logger
	metrics       *metrics.Metrics
	prefetchLimit int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPrefetchLimit bounds how many detail fetches run at once.
func WithPrefetchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.prefetchLimit = n
		}
	}
}

func New(src source.RecordSource, opts ...Option) *Service {
	s := &Service{
		source:        src,
		logger:        slog.Default(),
		prefetchLimit: defaultPrefetchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search takes a fresh snapshot and runs filter, sort and paginate over it.
func (s *Service) Search(ctx context.Context, params models.SearchFilterParams) (*models.PagedResult, error) {
	start := time.Now()
	defer s.metrics.ObserveQuery(s.source.Kind(), start)

	records, err := s.source.Snapshot(ctx)
	if err != nil {
		err = s.translate(err)
		s.logger.ErrorContext(ctx, "failed to load record snapshot",
			"source", s.source.Kind(),
			"error", err,
		)
		s.metrics.IncQueryError(string(dErrors.CodeOf(err)))
		return nil, err
	}

	res, err := query.Run(records, params)
	if err != nil {
		s.metrics.IncQueryError(string(dErrors.CodeOf(err)))
		return nil, err
	}
	return res, nil
}

func (s *Service) Detail(ctx context.Context, id int64) (*models.TravelDetail, error) {
	if id <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "id must be a positive integer")
	}
	d, err := s.source.Detail(ctx, id)
	if err != nil {
		err = s.translate(err)
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.logger.ErrorContext(ctx, "failed to load travel detail", "id", id, "error", err)
		}
		s.metrics.IncQueryError(string(dErrors.CodeOf(err)))
		return nil, err
	}
	return d, nil
}

// PrefetchDetails loads details for ids concurrently, bounded by the
// prefetch limit. The result keeps the order of ids. Any failure, including
// an unknown id, cancels the batch.
func (s *Service) PrefetchDetails(ctx context.Context, ids []int64) ([]models.TravelDetail, error) {
	if len(ids) > MaxPrefetchIDs {
		return nil, dErrors.New(dErrors.CodeValidation, "too many ids requested")
	}

	found := make([]*models.TravelDetail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.prefetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			d, err := s.Detail(gctx, id)
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("travel record %d not found", id))
			}
			if err != nil {
				return err
			}
			found[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.TravelDetail, 0, len(ids))
	for _, d := range found {
		out = append(out, *d)
	}
	return out, nil
}

// Invalidate drops cached snapshots after the record set changed.
func (s *Service) Invalidate(ctx context.Context) {
	if inv, ok := s.source.(interface{ Invalidate(context.Context) }); ok {
		inv.Invalidate(ctx)
	}
}

// translate maps source failures to domain errors, keeping the user-facing
// retrieval message.
func (s *Service) translate(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, transport.MessageNotFound)
	}
	var te *transport.Error
	if errors.As(err, &te) {
		switch te.Category {
		case transport.CategoryTimeout:
			return dErrors.Wrap(err, dErrors.CodeTimeout, transport.MessageRetrievalFailed)
		case transport.CategoryNotFound:
			return dErrors.Wrap(err, dErrors.CodeNotFound, transport.MessageNotFound)
		default:
			return dErrors.Wrap(err, dErrors.CodeUnavailable, transport.MessageRetrievalFailed)
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, transport.MessageRetrievalFailed)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, transport.MessageRetrievalFailed)
}
