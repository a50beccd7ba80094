package cache

import "errors"

var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrMarshal is returned when a page cannot be encoded or decoded.
	ErrMarshal = errors.New("cache: failed to encode page")
)
