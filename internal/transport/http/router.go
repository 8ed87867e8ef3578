// Package httptransport assembles the chi router and the middleware chain
// every request goes through.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tabilog/internal/platform/metrics"
	"tabilog/pkg/platform/httputil"
	"tabilog/pkg/platform/middleware/admin"
	authmw "tabilog/pkg/platform/middleware/auth"
	"tabilog/pkg/platform/middleware/metadata"
	"tabilog/pkg/platform/middleware/requesttime"
	"tabilog/pkg/requestcontext"
)

// Registrar mounts a module's endpoints.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports an optional dependency. A failing check degrades the
// health response but never fails it; nothing is fatal after startup.
type HealthCheck func(ctx context.Context) error

type Options struct {
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTP
	// TokenValidator verifies bearer tokens; nil forwards them unverified.
	TokenValidator authmw.TokenValidator
	// AdminToken enables the Admin registrars when non-empty.
	AdminToken string
	// RateLimit wraps the Public group when set.
	RateLimit func(http.Handler) http.Handler
	Checks    map[string]HealthCheck
	Public    []Registrar
	Admin     []Registrar
}

// NewRouter wires the middleware chain, the probes and every registrar.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(bridgeRequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(metadata.AccessLog(opts.Logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler(opts.Checks))
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if opts.RateLimit != nil {
			r.Use(opts.RateLimit)
		}
		r.Use(authmw.Bearer(opts.TokenValidator, opts.Logger))
		for _, reg := range opts.Public {
			reg.Register(r)
		}
	})

	if opts.AdminToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(admin.RequireAdminToken(opts.AdminToken, opts.Logger))
			for _, reg := range opts.Admin {
				reg.Register(r)
			}
		})
	}

	return r
}

// bridgeRequestID copies chi's request id into the request context so
// services read it without importing chi.
func bridgeRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := middleware.GetReqID(ctx); id != "" {
			ctx = requestcontext.WithRequestID(ctx, id)
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			resp.Checks = make(map[string]string, len(checks))
			for name, check := range checks {
				if err := check(ctx); err != nil {
					resp.Checks[name] = "degraded"
					resp.Status = "degraded"
					continue
				}
				resp.Checks[name] = "ok"
			}
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
