// Package cache provides a small key/value store with JSON-encoded values
// and per-key expiry. Sessions are its main user.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is implemented by RedisStore and MemoryStore.
type Store interface {
	// Get decodes the value stored under key into dest.
	Get(ctx context.Context, key string, dest any) error
	// Set stores value under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
