// Package cache stores short-lived keys such as processed webhook ids.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("key not found")

// Provider is a TTL key/value store shared by the webhook handlers.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	// SetIfAbsent stores value only when key is missing or expired and
	// reports whether it did.
	SetIfAbsent(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Close() error
}

const (
	ProviderMemory = "memory"
	ProviderRedis  = "redis"
)

type Config struct {
	Provider              string
	RedisConnectionString string
	// MemoryCapacity bounds the in-memory provider. Zero uses the default.
	MemoryCapacity int
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderMemory, "":
		return NewMemoryProvider(cfg.MemoryCapacity)
	case ProviderRedis:
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}
