package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/mkorolev/boolsearch/internal/searcher/executor"
	"github.com/mkorolev/boolsearch/pkg/config"
	"github.com/mkorolev/boolsearch/pkg/metrics"
	pkgredis "github.com/mkorolev/boolsearch/pkg/redis"
	"github.com/mkorolev/boolsearch/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "boolsearch:"

// QueryCache memoizes evaluated boolean queries in Redis. Keys are
// derived from the canonical expression string, so queries that differ
// only in operand order share one entry. A circuit breaker guards every
// Redis round trip: when Redis misbehaves the cache steps aside and
// queries are evaluated directly.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		breaker: resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{}),
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result for a canonical expression, if present.
func (c *QueryCache) Get(ctx context.Context, canonical string) (*executor.SearchResult, bool) {
	return c.get(ctx, canonical, true)
}

// get performs the Redis lookup. A miss is counted only when countMiss
// is set, so the re-check inside GetOrCompute's singleflight callback
// does not record the same logical lookup twice.
func (c *QueryCache) get(ctx context.Context, canonical string, countMiss bool) (*executor.SearchResult, bool) {
	key := c.buildKey(canonical)
	var data string
	err := c.breaker.Execute(func() error {
		var err error
		data, err = c.client.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			// A miss is not a Redis failure; don't trip the breaker.
			data = ""
			return nil
		}
		return err
	})
	if err != nil || data == "" {
		if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		if countMiss {
			c.recordMiss()
		}
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		if countMiss {
			c.recordMiss()
		}
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "canonical", canonical, "key", key)
	return &result, true
}

// Set stores a result under its canonical expression.
func (c *QueryCache) Set(ctx context.Context, canonical string, result *executor.SearchResult) {
	key := c.buildKey(canonical)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.cfg.CacheTTL)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and stores it.
// Concurrent callers with the same canonical expression share a single
// computation via singleflight.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	canonical string,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, canonical); ok {
		return result, true, nil
	}
	key := c.buildKey(canonical)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.get(ctx, canonical, false); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, canonical, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate drops every cached query result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	pattern := keyPrefix + "*"
	deleted, err := c.client.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Stats returns the hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(canonical string) string {
	hash := sha256.Sum256([]byte(canonical))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
