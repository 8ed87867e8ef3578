// Package metadata captures who is calling: client IP and a parsed
// User-Agent, and writes one access log line per request.
package metadata

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mssola/useragent"

	"tabilog/pkg/requestcontext"
)

type clientKey struct{}

// Client describes the caller as seen by this server.
type Client struct {
	IP        string
	UserAgent string
	Browser   string
	OS        string
	Mobile    bool
	Bot       bool
}

// ParseClient extracts the client IP and parses the User-Agent header.
func ParseClient(r *http.Request) Client {
	raw := r.Header.Get("User-Agent")
	c := Client{
		IP:        ClientIPFromRequest(r),
		UserAgent: raw,
	}
	if raw != "" {
		ua := useragent.New(raw)
		c.Browser, _ = ua.Browser()
		c.OS = ua.OS()
		c.Mobile = ua.Mobile()
		c.Bot = ua.Bot()
	}
	return c
}

// ClientMetadata stores the parsed Client in the request context. Apply it
// early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClient(r.Context(), ParseClient(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClientFrom(ctx context.Context) Client {
	if c, ok := ctx.Value(clientKey{}).(Client); ok {
		return c
	}
	return Client{}
}

func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientIPFromRequest prefers proxy headers over RemoteAddr.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// AccessLog writes one line per request after it completes. Health and
// metrics probes are logged at debug.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			ctx := r.Context()
			route := r.URL.Path
			if rc := chi.RouteContext(ctx); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case route == "/health" || route == "/metrics":
				level = slog.LevelDebug
			case status >= 500:
				level = slog.LevelError
			}

			c := ClientFrom(ctx)
			logger.Log(ctx, level, "http request",
				"request_id", requestcontext.RequestID(ctx),
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip", c.IP,
				"browser", c.Browser,
				"os", c.OS,
				"mobile", c.Mobile,
				"bot", c.Bot,
			)
		})
	}
}
