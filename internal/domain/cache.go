package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// FileStatusCache remembers provider file lookups so repeated quiz requests
// over the same files do not hit the provider every time.
type FileStatusCache interface {
	// Get returns ErrCacheMiss when nothing is cached for fileID.
	Get(ctx context.Context, fileID string) (*FileHandle, error)
	Put(ctx context.Context, handle *FileHandle, ttl time.Duration) error
	Invalidate(ctx context.Context, fileID string) error
}
