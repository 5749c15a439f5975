// Package cache memoizes expensive Chef AI results for a bounded time.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/metrics"
	"go.uber.org/zap"
)

// DefaultTTL is how long a computed result is served before recomputing.
const DefaultTTL = time.Hour

// Key identifies one cached result. Epoch distinguishes provider
// configurations so results computed without a model are not served once
// one becomes available.
type Key struct {
	Op       string
	Input    string
	Username string
	Epoch    string
}

// String renders the key used against the Store.
func (k Key) String() string {
	h := sha256.New()
	h.Write([]byte(k.Username))
	h.Write([]byte{0})
	h.Write([]byte(k.Input))
	return fmt.Sprintf("%s:%s:%s", k.Op, k.Epoch, hex.EncodeToString(h.Sum(nil)))
}

// ResultCache stores JSON-encoded results in a Store.
type ResultCache struct {
	store Store
	ttl   time.Duration
}

// New creates a ResultCache. A non-positive ttl means DefaultTTL and a nil
// store means a fresh MemoryStore.
func New(store Store, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &ResultCache{store: store, ttl: ttl}
}

// TTL returns the entry lifetime.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Remember returns the cached value for key or computes and stores it.
// Store failures behave like misses. When compute fails or panics, the value
// from degraded is returned and nothing is stored, so the next call retries.
// Remember never panics and never returns an error.
func Remember[T any](ctx context.Context, c *ResultCache, key Key, compute func(context.Context) (T, error), degraded func(error) T) (out T) {
	log := logger.With(zap.String("operation", key.Op), zap.String("username", key.Username))
	id := key.String()

	if c != nil {
		if raw, ok, err := c.store.Get(ctx, id); err != nil {
			log.Warn("result cache read failed", zap.Error(err))
		} else if ok {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				metrics.CacheLookups.WithLabelValues(key.Op, "hit").Inc()
				return cached
			}
			log.Warn("discarding undecodable cache entry", zap.String("key", id))
		}
	}
	metrics.CacheLookups.WithLabelValues(key.Op, "miss").Inc()

	defer func() {
		if r := recover(); r != nil {
			log.Error("cached operation panicked", zap.Any("panic", r))
			metrics.CacheLookups.WithLabelValues(key.Op, "degraded").Inc()
			out = degraded(fmt.Errorf("panic: %v", r))
		}
	}()

	val, err := compute(ctx)
	if err != nil {
		log.Warn("cached operation failed", zap.Error(err))
		metrics.CacheLookups.WithLabelValues(key.Op, "degraded").Inc()
		return degraded(err)
	}

	if c != nil {
		raw, err := json.Marshal(val)
		if err != nil {
			log.Warn("result not cacheable", zap.Error(err))
			return val
		}
		if err := c.store.Set(ctx, id, raw, c.ttl); err != nil {
			log.Warn("result cache write failed", zap.Error(err))
		}
	}
	return val
}
