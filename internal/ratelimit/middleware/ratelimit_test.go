package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"tabilog/internal/ratelimit/metrics"
	"tabilog/internal/ratelimit/models"
	"tabilog/internal/ratelimit/store/bucket"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	return nil, errors.New("redis down")
}

func serve(h http.Handler, method, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/drafts", nil)
	req.RemoteAddr = ip + ":4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	limits := map[models.Class]models.Limit{
		models.ClassWrite: {Requests: 2, Window: time.Minute},
	}

	t.Run("writes are budgeted per client", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		h := New(bucket.NewInMemoryBucketStore(), limits, logger, WithMetrics(m)).RateLimit(ok)

		assert.Equal(t, http.StatusNoContent, serve(h, http.MethodPost, "192.0.2.1").Code)
		second := serve(h, http.MethodPost, "192.0.2.1")
		assert.Equal(t, http.StatusNoContent, second.Code)
		assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

		third := serve(h, http.MethodPost, "192.0.2.1")
		assert.Equal(t, http.StatusTooManyRequests, third.Code)
		assert.NotEmpty(t, third.Header().Get("Retry-After"))
		assert.Contains(t, third.Body.String(), "rate_limit_exceeded")
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected.WithLabelValues("write")))

		assert.Equal(t, http.StatusNoContent, serve(h, http.MethodPost, "192.0.2.2").Code)
	})

	t.Run("reads without a limit pass", func(t *testing.T) {
		h := New(bucket.NewInMemoryBucketStore(), limits, logger).RateLimit(ok)
		for range 5 {
			assert.Equal(t, http.StatusNoContent, serve(h, http.MethodGet, "192.0.2.1").Code)
		}
	})

	t.Run("store failure fails open", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		h := New(failingStore{}, limits, logger, WithMetrics(m)).RateLimit(ok)
		assert.Equal(t, http.StatusNoContent, serve(h, http.MethodPost, "192.0.2.1").Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.FailedOpen))
	})
}
