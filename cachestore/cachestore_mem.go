package cachestore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// In-process implementation for development and tests. The expirable LRU
// takes a single store-wide TTL, so the per-call TTL is ignored here; the
// store TTL should be set at least as long as the longest entry lifetime
// callers expect.
type MemCacheStore struct {
	Data *expirable.LRU[string, string]
}

var _ CacheStore = (*MemCacheStore)(nil)

func NewMemCacheStore(capacity int, ttl time.Duration) *MemCacheStore {
	return &MemCacheStore{
		Data: expirable.NewLRU[string, string](capacity, nil, ttl),
	}
}

func (s *MemCacheStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.Data.Get(key)
	if !ok {
		return "", nil
	}
	return v, nil
}

func (s *MemCacheStore) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	s.Data.Add(key, val)
	return nil
}

func (s *MemCacheStore) Del(ctx context.Context, key string) error {
	s.Data.Remove(key)
	return nil
}
