package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	jwttoken "tabilog/internal/jwt_token"
	"tabilog/internal/platform/config"
	"tabilog/internal/platform/httpserver"
	"tabilog/internal/platform/logger"
	platformmetrics "tabilog/internal/platform/metrics"
	platformredis "tabilog/internal/platform/redis"
	ratelimitmetrics "tabilog/internal/ratelimit/metrics"
	ratelimitmw "tabilog/internal/ratelimit/middleware"
	ratelimitmodels "tabilog/internal/ratelimit/models"
	"tabilog/internal/ratelimit/store/bucket"
	httptransport "tabilog/internal/transport/http"
	"tabilog/internal/travel/authoring"
	"tabilog/internal/travel/handler"
	"tabilog/internal/travel/mapsurface"
	travelmetrics "tabilog/internal/travel/metrics"
	"tabilog/internal/travel/service"
	"tabilog/internal/travel/source"
	"tabilog/internal/travel/store"
	"tabilog/internal/travel/transport"
	authmw "tabilog/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/travel.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := travelmetrics.New(reg)

	backend := transport.NewClient(cfg.APIBaseURL,
		transport.WithTimeout(cfg.HTTPTimeout),
		transport.WithLogger(log),
	)
	if cfg.APIBaseURL == "" {
		log.Warn("no backing store configured; submissions will fail")
	}

	checks := map[string]httptransport.HealthCheck{}
	var cache source.Cache = store.NewInMemoryCache(cfg.CacheTTL)
	var buckets ratelimitmw.BucketStore = bucket.NewInMemoryBucketStore()
	rdb, err := platformredis.New(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.Warn("redis unavailable, using in-memory cache", "error", err)
	case rdb != nil:
		defer rdb.Close()
		cache = store.NewRedisCache(rdb.Client, cfg.CacheTTL)
		buckets = bucket.NewRedisBucketStore(rdb.Client)
		checks["cache"] = rdb.Health
	}

	var src source.RecordSource
	switch cfg.DataSource {
	case config.DataSourceRemote:
		src = source.NewRemote(backend,
			source.WithCache(cache),
			source.WithLogger(log),
			source.WithMetrics(m),
		)
	default:
		src = source.NewFixture()
	}

	records := service.New(src,
		service.WithLogger(log),
		service.WithMetrics(m),
	)
	drafts := authoring.NewService(authoring.NewInMemoryStore(), backend,
		authoring.WithLogger(log),
		authoring.WithMetrics(m),
		authoring.WithSubmittedHook(records.Invalidate),
	)
	go drafts.RunSweeper(ctx, cfg.SessionSweepInterval, cfg.SessionIdleTimeout)

	var validator authmw.TokenValidator
	if cfg.JWTSigningKey != "" {
		validator = jwttoken.NewVerifierAdapter(jwttoken.NewVerifier(cfg.JWTSigningKey, cfg.JWTIssuer))
	}

	var rateLimit func(http.Handler) http.Handler
	if cfg.RateLimitEnabled {
		limiter := ratelimitmw.New(buckets, map[ratelimitmodels.Class]ratelimitmodels.Limit{
			ratelimitmodels.ClassRead:  {Requests: cfg.RateLimitReadPerMinute, Window: time.Minute},
			ratelimitmodels.ClassWrite: {Requests: cfg.RateLimitWritePerMinute, Window: time.Minute},
		}, log, ratelimitmw.WithMetrics(ratelimitmetrics.New(reg)))
		rateLimit = limiter.RateLimit
	}

	router := httptransport.NewRouter(httptransport.Options{
		Logger:         log,
		Gatherer:       reg,
		Metrics:        platformmetrics.New(reg),
		TokenValidator: validator,
		AdminToken:     cfg.AdminToken,
		RateLimit:      rateLimit,
		Checks:         checks,
		Public: []httptransport.Registrar{
			handler.New(records, drafts, mapsurface.New(cfg.UseMockMap, cfg.GoogleMapsAPIKey), log),
		},
		Admin: []httptransport.Registrar{
			handler.NewAdmin(records, drafts, cfg.SessionIdleTimeout, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router, cfg.HTTPTimeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting tabilog",
			"addr", cfg.Addr,
			"data_source", cfg.DataSource,
			"mock_map", cfg.UseMockMap,
			"token_verification", validator != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
