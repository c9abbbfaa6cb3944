package rules

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/meridian-social/palisade/cachestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (s failingSource) Fetch(ctx context.Context) ([]byte, error) {
	return nil, errors.New("source down")
}

func TestStoreCacheAside(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cache := cachestore.NewMemCacheStore(10, time.Hour)
	store := NewStore(cache, StaticSource{}, nil)

	// first load misses and repopulates
	rs, err := store.Load(ctx)
	require.NoError(t, err)
	assert.NotEmpty(rs.ContentRules.SpamKeywords)

	cached, err := cache.Get(ctx, "spam:rules")
	require.NoError(t, err)
	assert.NotEmpty(cached)

	// second load is served from cache
	rs2, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(rs.Thresholds, rs2.Thresholds)
}

func TestStoreInvalidate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cache := cachestore.NewMemCacheStore(10, time.Hour)
	store := NewStore(cache, StaticSource{}, nil)

	_, err := store.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Invalidate(ctx))
	cached, err := cache.Get(ctx, "spam:rules")
	require.NoError(t, err)
	assert.Equal("", cached)

	// next load must not observe the invalidated value
	_, err = store.Load(ctx)
	assert.NoError(err)
}

func TestStoreConcurrentMisses(t *testing.T) {
	// racing misses repopulate idempotently; every load succeeds
	ctx := context.Background()
	cache := cachestore.NewMemCacheStore(10, time.Hour)
	store := NewStore(cache, StaticSource{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs, err := store.Load(ctx)
			assert.NoError(t, err)
			assert.NotNil(t, rs)
		}()
	}
	wg.Wait()
}

func TestStoreBothUnavailable(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cache := cachestore.NewMemCacheStore(10, time.Hour)
	store := NewStore(cache, failingSource{}, nil)

	_, err := store.Load(ctx)
	assert.Error(err)
}

func TestStoreCanceledBeforeSourceFallback(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cache := cachestore.NewMemCacheStore(10, time.Hour)
	store := NewStore(cache, StaticSource{}, nil)

	_, err := store.Load(ctx)
	assert.ErrorIs(err, context.Canceled)
}
