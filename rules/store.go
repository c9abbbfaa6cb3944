package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/meridian-social/palisade/cachestore"
)

const (
	// cache key shared by all store instances; operators invalidate this
	// key to roll out a new ruleset without restarting the service
	rulesCacheKey = "spam:rules"
	rulesCacheTTL = time.Hour
)

// Durable origin for the raw ruleset document, read on cache miss.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Source backed by a JSON file on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading ruleset file: %w", err)
	}
	return raw, nil
}

// Source returning the embedded default ruleset.
type StaticSource struct{}

func (s StaticSource) Fetch(ctx context.Context) ([]byte, error) {
	return defaultRulesJSON, nil
}

// Store serves the active RuleSet with a cache-aside read path: a keyed
// read from the shared cache, falling back to the durable source on miss
// and repopulating the cache with a fixed TTL.
//
// There is deliberately no locking around the repopulation: concurrent
// misses may race to write the same value, and the write is idempotent
// (same source, same document), so the race is harmless. Do not add
// exclusion here; it would serialize unrelated requests.
type Store struct {
	Cache  cachestore.CacheStore
	Source Source
	Logger *slog.Logger
}

func NewStore(cache cachestore.CacheStore, source Source, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		Cache:  cache,
		Source: source,
		Logger: logger.With("component", "rulestore"),
	}
}

// Returns the active RuleSet. Fails only if both the cache and the durable
// source are unavailable, or if the document they yield is invalid.
func (s *Store) Load(ctx context.Context) (*RuleSet, error) {
	cached, cacheErr := s.Cache.Get(ctx, rulesCacheKey)
	if cacheErr != nil {
		s.Logger.Warn("ruleset cache read failed, falling back to source", "err", cacheErr)
	}
	if cached != "" {
		rs, err := ParseRuleSet([]byte(cached))
		if err == nil {
			rulesCacheHits.Inc()
			return rs, nil
		}
		// a corrupt cache entry is treated as a miss; the refresh below
		// overwrites it
		s.Logger.Warn("cached ruleset is corrupt, refreshing from source", "err", err)
	}
	rulesCacheMisses.Inc()

	// honor the caller's deadline before starting the slower source read
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.Source.Fetch(ctx)
	if err != nil {
		if cacheErr != nil {
			return nil, fmt.Errorf("ruleset unavailable: cache read failed (%v); source read failed: %w", cacheErr, err)
		}
		return nil, fmt.Errorf("ruleset unavailable: %w", err)
	}
	rs, err := ParseRuleSet(raw)
	if err != nil {
		return nil, err
	}

	// best-effort repopulation; serving the ruleset matters more than
	// caching it
	if err := s.Cache.Set(ctx, rulesCacheKey, string(raw), rulesCacheTTL); err != nil {
		s.Logger.Warn("ruleset cache write failed", "err", err)
	}
	return rs, nil
}

// Deletes the cached ruleset so the next Load refreshes from the durable
// source. This is the operator path for rolling out rule changes.
func (s *Store) Invalidate(ctx context.Context) error {
	if err := s.Cache.Del(ctx, rulesCacheKey); err != nil {
		return fmt.Errorf("invalidating ruleset cache: %w", err)
	}
	rulesCacheInvalidations.Inc()
	s.Logger.Info("ruleset cache invalidated")
	return nil
}
