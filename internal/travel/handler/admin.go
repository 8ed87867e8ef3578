package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tabilog/pkg/platform/httputil"
	"tabilog/pkg/requestcontext"
)

type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type SessionSweeper interface {
	SweepIdle(ctx context.Context, maxIdle time.Duration) int
}

// AdminHandler serves operator endpoints. The caller mounts it behind the
// admin token middleware.
type AdminHandler struct {
	cache   CacheInvalidator
	sweeper SessionSweeper
	maxIdle time.Duration
	logger  *slog.Logger
}

func NewAdmin(cache CacheInvalidator, sweeper SessionSweeper, maxIdle time.Duration, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{cache: cache, sweeper: sweeper, maxIdle: maxIdle, logger: logger}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Delete("/admin/cache", h.HandleInvalidateCache)
	r.Post("/admin/drafts/sweep", h.HandleSweepDrafts)
}

// HandleInvalidateCache drops cached record snapshots and details.
func (h *AdminHandler) HandleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.cache.Invalidate(ctx)
	h.logger.InfoContext(ctx, "record cache invalidated",
		"request_id", requestcontext.RequestID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSweepDrafts drops idle draft sessions now instead of waiting for the
// background sweeper.
func (h *AdminHandler) HandleSweepDrafts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n := h.sweeper.SweepIdle(ctx, h.maxIdle)
	h.logger.InfoContext(ctx, "idle drafts swept",
		"request_id", requestcontext.RequestID(ctx),
		"removed", n,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"removed": n})
}
