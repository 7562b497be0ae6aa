package utils

import (
	"context" // Context for Redis operations
	"time"    // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// revokedPrefix namespaces revoked token ids in Redis
const revokedPrefix = "auth:revoked:"

// TokenRevoker records revoked access tokens in Redis until they expire
type TokenRevoker struct {
	rdb *redis.Client // Redis client
}

// NewTokenRevoker returns a revoker backed by rdb
func NewTokenRevoker(rdb *redis.Client) *TokenRevoker {
	return &TokenRevoker{rdb: rdb}
}

// Revoke marks tokenID revoked until the token would have expired anyway
func (r *TokenRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil // Already expired, nothing to remember
	}
	return r.rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err() // Set value in Redis with TTL
}

// IsRevoked reports whether tokenID was revoked
func (r *TokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedPrefix+tokenID).Result() // Check key in Redis
	if err != nil {
		return false, err // Redis error
	}
	return n > 0, nil
}
