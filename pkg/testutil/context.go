package testutil

import (
	"context"
	"net/http"

	"tabilog/pkg/requestcontext"
)

// WithBearerToken adds a bearer token to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithBearerToken(req *http.Request, token string) *http.Request {
	if token == "" {
		return req
	}
	return req.WithContext(requestcontext.WithBearerToken(req.Context(), token))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
