package domain

import "errors"

var (
	// ErrNotFound is returned when a requested catalog row does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrFeedFailure is returned when an upstream catalog/marketplace feed request fails
	ErrFeedFailure = errors.New("upstream feed request failed")

	// ErrMissingCredentials is returned when a feed requiring credentials has none configured
	ErrMissingCredentials = errors.New("missing feed credentials")
)
