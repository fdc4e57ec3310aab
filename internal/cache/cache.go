// Package cache stores serialized response envelopes under deterministic keys.
package cache

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rajasatyajit/DisasterFeed/config"
	"github.com/rajasatyajit/DisasterFeed/internal/logger"
	"github.com/rajasatyajit/DisasterFeed/pkg/utils"
)

// Cache is a byte-oriented key/value store with per-entry expiry
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
	Close() error
}

// listParams are the comma-separated parameters whose term order and
// repetition do not change a result
var listParams = map[string]bool{"sources": true, "keywords": true, "q": true}

// Key derives "<prefix>:<kind>:<sha1>" from a parameter set. Names and values
// are trimmed and lower-cased; list parameters are reduced to their sorted,
// de-duplicated terms. Empty values are dropped, so equivalent requests share
// a key.
func Key(prefix, kind string, params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		k = strings.ToLower(strings.TrimSpace(k))
		if listParams[k] {
			v = utils.CanonicalList(v)
		} else {
			v = strings.ToLower(strings.TrimSpace(v))
		}
		if v != "" {
			values.Set(k, v)
		}
	}
	// Encode sorts by key
	return prefix + ":" + kind + ":" + utils.HashString(values.Encode())
}

// New returns a Redis cache when a Redis URL is configured, otherwise an
// in-process cache. A Redis connection failure falls back to memory.
func New(redisCfg config.RedisConfig, cacheCfg config.CacheConfig) Cache {
	if redisCfg.URL != "" {
		c, err := NewRedisCache(redisCfg)
		if err == nil {
			logger.Info("Using Redis response cache")
			return c
		}
		logger.Warn("Redis cache unavailable, falling back to memory", "error", err)
	}
	logger.Info("Using in-memory response cache")
	return NewMemoryCache(cacheCfg.UpdatesTTL, cacheCfg.CleanupInterval)
}
