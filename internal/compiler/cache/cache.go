// Package cache stores compiled snapshots keyed by a content hash of their
// inputs, so unchanged services are not recompiled.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Cache defines the interface for all cache backends
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache
	Clear(ctx context.Context) error

	// Exists checks if a key exists in the cache
	Exists(ctx context.Context, key string) (bool, error)
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds common configuration for cache backends
type Config struct {
	// DefaultTTL applies when Set is called with a zero TTL. Zero or negative
	// keeps entries forever.
	DefaultTTL time.Duration
	// Prefix is prepended to all cache keys
	Prefix string
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 24 * time.Hour,
		Prefix:     "shapec:",
	}
}

// ErrCacheMiss is returned when a key is not found in the cache
var ErrCacheMiss = errors.New("cache miss")

// missError wraps ErrCacheMiss with the key that missed.
func missError(key string) error {
	return fmt.Errorf("%w: %s", ErrCacheMiss, key)
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// Options selects and configures a backend for New.
type Options struct {
	Backend   string
	RedisAddr string
	Config    Config
}

// New builds the backend named by opts. BackendNone returns a nil Cache.
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case BackendNone:
		return nil, nil
	case "", BackendMemory:
		return NewMemoryCacheWithConfig(opts.Config), nil
	case BackendRedis:
		cfg := DefaultRedisConfig()
		if opts.RedisAddr != "" {
			cfg.Addr = opts.RedisAddr
		}
		cfg.Config = opts.Config
		return NewRedisCacheWithConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
