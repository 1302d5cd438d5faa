package cache

import (
	"context"
	"time"
)

// Service defines the key/value operations the session store relies on.
// MGet omits missing keys from its result.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	MGet(ctx context.Context, keys ...string) (map[string]string, error)
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	Close() error
}
