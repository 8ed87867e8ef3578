// Package transport talks to the backing store that owns persisted travel
// records. Every failure is normalized into *Error.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tabilog/internal/travel/models"
	"tabilog/internal/travel/submission"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client is the HTTP client of the backing store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches one page of GET /travels.
func (c *Client) List(ctx context.Context, params models.SearchFilterParams) (*ListPage, error) {
	reqURL := c.baseURL + "/travels"
	if q := params.Values().Encode(); q != "" {
		reqURL += "?" + q
	}
	status, body, err := c.do(ctx, http.MethodGet, reqURL, "", nil, MessageRetrievalFailed)
	if err != nil {
		return nil, err
	}
	return parseListResponse(status, body)
}

// Detail fetches GET /travels/{id}.
func (c *Client) Detail(ctx context.Context, id int64) (*models.TravelDetail, error) {
	reqURL := c.baseURL + "/travels/" + url.PathEscape(strconv.FormatInt(id, 10))
	status, body, err := c.do(ctx, http.MethodGet, reqURL, "", nil, MessageRetrievalFailed)
	if err != nil {
		return nil, err
	}
	return parseDetailResponse(status, body)
}

// Create posts a serialized draft. The bearer header is only sent when token
// is non-empty.
func (c *Client) Create(ctx context.Context, token string, payload submission.Payload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, NewError(CategoryInternal, 0, MessageSubmissionFailed, err)
	}
	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/travels", token, raw, MessageSubmissionFailed)
	if err != nil {
		return nil, err
	}
	return parseCreateResponse(status, body)
}

func (c *Client) do(ctx context.Context, method, reqURL, token string, payload []byte, failMsg string) (int, []byte, error) {
	start := time.Now()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return 0, nil, NewError(CategoryInternal, 0, failMsg, fmt.Errorf("request creation failed: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backing store request failed",
			"method", method,
			"url", reqURL,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return 0, nil, networkError(err, failMsg)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, networkError(err, failMsg)
	}

	c.logger.DebugContext(ctx, "backing store request",
		"method", method,
		"url", reqURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp.StatusCode, body, nil
}

func networkError(err error, msg string) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewError(CategoryTimeout, 0, msg, err)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(CategoryInternal, 0, msg, err)
	}
	return NewError(CategoryProviderOutage, 0, msg, err)
}
