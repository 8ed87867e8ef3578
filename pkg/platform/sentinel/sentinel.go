package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Sources, caches and stores return
// these (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: record, draft session or itinerary entry does not exist
// - ErrConflict: operation collides with one already in flight
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: backing store or cache temporarily unavailable
// - ErrCacheMiss: cache holds no value for the key
//
// For validation failures, use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrCacheMiss    = errors.New("cache miss")
)
