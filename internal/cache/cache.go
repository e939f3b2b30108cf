// Package cache provides the key/value stores behind the poll result cache.
//
// Two backends implement Store:
//   - RedisStore, backed by github.com/redis/go-redis/v9, shared by every
//     replica so that an invalidation on one instance is seen by all.
//   - MemoryStore, an in-process map for single-instance deployments and tests.
//
// Single-key operations are atomic in both backends. Stores own their
// connections and must be closed by whoever opened them.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Akins-Coded/Online-Poll-System/internal/config"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is a minimal byte-oriented key/value store with TTLs and counters.
type Store interface {
	// Get returns the value stored at key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores val at key for ttl. A ttl <= 0 keeps the entry until deleted.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Delete removes keys; missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments the integer at key (0 when absent) and
	// returns the new value. Counters never expire.
	Incr(ctx context.Context, key string) (int64, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the backend's resources.
	Close() error
}

// Open selects the backend from cfg: Redis when REDIS_URL is set, otherwise
// the in-process store. A configured but unreachable Redis is an error; the
// service does not silently fall back to per-instance caching.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("cache: no REDIS_URL configured, using in-process store")
		return NewMemoryStore(), nil
	}
	s, err := NewRedisStore(ctx, cfg.RedisURL, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("cache: redis connected")
	return s, nil
}
