package urlregistry

import "errors"

var (
	// ErrCacheMiss is returned by Cache implementations when a value is not cached.
	ErrCacheMiss = errors.New("url not found in cache")
)
