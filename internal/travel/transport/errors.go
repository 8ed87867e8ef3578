package transport

import (
	"errors"
	"fmt"
)

// Category is the normalized failure taxonomy of the backing store.
type Category string

const (
	// CategoryTimeout indicates the backing store took too long to respond
	CategoryTimeout Category = "timeout"

	// CategoryBadData indicates a malformed request or response body
	CategoryBadData Category = "bad_data"

	// CategoryAuthentication indicates a rejected or missing bearer token
	CategoryAuthentication Category = "authentication"

	// CategoryProviderOutage indicates the backing store is unavailable
	CategoryProviderOutage Category = "provider_outage"

	// CategoryNotFound indicates the requested record doesn't exist
	CategoryNotFound Category = "not_found"

	// CategoryRateLimited indicates too many requests
	CategoryRateLimited Category = "rate_limited"

	// CategoryInternal indicates an unexpected internal error
	CategoryInternal Category = "internal"
)

// User-facing messages surfaced to clients.
const (
	MessageRetrievalFailed  = "旅行記録の取得に失敗しました"
	MessageSubmissionFailed = "投稿に失敗しました"
	MessageNotFound         = "旅行記録が見つかりません"
)

// Error wraps a backing-store failure with a normalized category. Message is
// safe to show to end users.
type Error struct {
	Category   Category
	Message    string
	Status     int
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("backing store [%s] status=%d: %s: %v", e.Category, e.Status, e.Message, e.Underlying)
	}
	return fmt.Sprintf("backing store [%s] status=%d: %s", e.Category, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError builds a normalized error. Timeouts, outages and rate limits are
// retryable.
func NewError(category Category, status int, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Message:    message,
		Status:     status,
		Underlying: underlying,
		Retryable: category == CategoryTimeout ||
			category == CategoryProviderOutage ||
			category == CategoryRateLimited,
	}
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// CategoryOf extracts the category, defaulting to internal.
func CategoryOf(err error) Category {
	var te *Error
	if errors.As(err, &te) {
		return te.Category
	}
	return CategoryInternal
}

// categoryForStatus maps a non-2xx status to a category.
func categoryForStatus(status int) Category {
	switch {
	case status == 401 || status == 403:
		return CategoryAuthentication
	case status == 404:
		return CategoryNotFound
	case status == 408 || status == 504:
		return CategoryTimeout
	case status == 429:
		return CategoryRateLimited
	case status >= 500:
		return CategoryProviderOutage
	case status >= 400:
		return CategoryBadData
	default:
		return CategoryInternal
	}
}
