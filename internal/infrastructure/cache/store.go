package cache

import (
	"context"
	"time"
)

// Store is a string key-value cache with per-key expiration
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// New returns a Redis store when url is set, otherwise an in-memory store
func New(ctx context.Context, url string) (Store, error) {
	if url == "" {
		return NewMemoryStore(), nil
	}
	return NewRedisStore(ctx, url)
}
