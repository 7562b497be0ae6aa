// Package service holds the operations of the store rating core: the rating
// aggregator, the listing query engine, the rating upsert coordinator and the
// user and authentication operations. Every operation takes the acting
// identity explicitly and consults the access policy before touching storage.
package service

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection
	"slices"  // Whitelist lookups
	"strings" // Input normalization
	"time"    // Revocation deadlines

	"store_rating/internal/domain" // Domain models and error kinds
)

// Passwords hashes and verifies password credentials.
type Passwords interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// Tokens issues and verifies access tokens.
type Tokens interface {
	Issue(userID string, role domain.Role) (string, domain.TokenClaims, error)
	Parse(token string) (domain.TokenClaims, error)
}

// Revocations remembers tokens invalidated before their expiry.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// LoginLimiter bounds failed login attempts per key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// sortSpec resolves sortBy/sortOrder against a whitelist of sortable keys.
// Defaults to createdAt DESC.
func sortSpec(sortBy, sortOrder string, columns map[string]string, computed ...string) (key string, desc bool, err error) {
	key = strings.TrimSpace(sortBy)
	if key == "" {
		key = "createdAt" // Default sort key
	}
	if _, ok := columns[key]; !ok && !slices.Contains(computed, key) {
		return "", false, domain.InvalidInput("cannot sort by %q", key)
	}
	switch strings.ToUpper(strings.TrimSpace(sortOrder)) {
	case "", domain.SortDesc:
		desc = true // Newest first unless asked otherwise
	case domain.SortAsc:
		desc = false
	default:
		return "", false, domain.InvalidInput("sortOrder must be ASC or DESC")
	}
	return key, desc, nil
}

// normalizeEmail lower-cases and trims an email address
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// optional turns a blank string into nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// isNotFound reports whether err is a NotFound domain error
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// deref returns the value of s or "" when nil
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
