package utils

import (
	"context" // Context for Redis operations
	"time"    // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// throttlePrefix namespaces failed login counters in Redis
const throttlePrefix = "auth:login-failures:"

// LoginThrottle counts failed logins per key inside a fixed window
type LoginThrottle struct {
	rdb    *redis.Client // Redis client
	max    int64         // Failures allowed per window
	window time.Duration // Window length
}

// NewLoginThrottle allows max failures per key within window
func NewLoginThrottle(rdb *redis.Client, max int64, window time.Duration) *LoginThrottle {
	if max <= 0 {
		max = 5 // Default failure budget
	}
	if window <= 0 {
		window = 15 * time.Minute // Default window
	}
	return &LoginThrottle{rdb: rdb, max: max, window: window}
}

// Allow reports whether key still has attempts left
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	n, err := t.rdb.Get(ctx, throttlePrefix+key).Int64()
	if err == redis.Nil {
		return true, nil // No failures recorded
	} else if err != nil {
		return false, err // Other Redis error
	}
	return n < t.max, nil
}

// Fail records a failed attempt for key. The counter and its expiry are
// written in one transaction; the first failure opens the window.
func (t *LoginThrottle) Fail(ctx context.Context, key string) error {
	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, throttlePrefix+key)               // Count the failure
		pipe.ExpireNX(ctx, throttlePrefix+key, t.window) // Only sets a TTL when none exists
		return nil
	})
	return err
}

// Reset forgets the failures of key
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	return t.rdb.Del(ctx, throttlePrefix+key).Err() // Delete key from Redis
}
