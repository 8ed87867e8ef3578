// Package models holds the rate limiting vocabulary shared by stores and
// middleware.
package models

import (
	"net/http"
	"time"
)

// Class groups endpoints that share a budget.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

// ClassFor treats safe methods as reads and everything else as writes.
func ClassFor(method string) Class {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}

// Limit is a budget of Requests per Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Key builds the bucket key for a client and class.
func Key(class Class, client string) string {
	return "ratelimit:" + string(class) + ":" + client
}
