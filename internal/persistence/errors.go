package persistence

import "github.com/example/pricing-console/internal/application"

var (
	// ErrNotFound is returned when the requested key holds no value.
	ErrNotFound = application.ErrNotFound
	// ErrWriteFailed is returned when the underlying store rejects a write,
	// for example because it is unavailable or out of space.
	ErrWriteFailed = application.ErrWriteFailed
)
