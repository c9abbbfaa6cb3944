package cachestore

import (
	"context"
	"time"
)

// Shared string key-value cache with per-entry expiry.
//
// Get returns an empty string (and no error) on cache miss; callers treat
// the empty string as "absent" and fall back to their durable source.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
