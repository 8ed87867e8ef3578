package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"tabilog/pkg/testutil"
)

type fakeAdminDeps struct {
	invalidated int
	maxIdle     time.Duration
}

func (f *fakeAdminDeps) Invalidate(context.Context) { f.invalidated++ }

func (f *fakeAdminDeps) SweepIdle(_ context.Context, maxIdle time.Duration) int {
	f.maxIdle = maxIdle
	return 3
}

func TestAdminHandler(t *testing.T) {
	deps := &fakeAdminDeps{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	NewAdmin(deps, deps, time.Hour, logger).Register(r)

	rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodDelete, "/admin/cache"))
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.Equal(t, 1, deps.invalidated)

	rr = testutil.DoRequest(r, testutil.NewRequest(t, http.MethodPost, "/admin/drafts/sweep"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.JSONEq(t, `{"removed":3}`, rr.Body.String())
	assert.Equal(t, time.Hour, deps.maxIdle)
}
