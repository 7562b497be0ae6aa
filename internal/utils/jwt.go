package utils

import (
	"time" // Token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Token ids

	"store_rating/internal/domain" // Roles and token claims
)

// JWT Claims
type Claims struct {
	UserID               string      `json:"user_id"` // Custom claim for user ID
	Role                 domain.Role `json:"role"`    // Role at issuance, informational only
	jwt.RegisteredClaims             // Standard JWT claims
}

// JWTManager issues and verifies HS256 access tokens
type JWTManager struct {
	secret []byte           // Signing key
	ttl    time.Duration    // Token lifetime
	now    func() time.Time // Clock, replaceable in tests
}

// NewJWTManager creates a manager signing with secret; tokens live for ttl
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour // Default lifetime
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for a given user
func (m *JWTManager) Issue(userID string, role domain.Role) (string, domain.TokenClaims, error) {
	now := m.now()
	claims := Claims{
		UserID: userID, // Custom claim for user ID
		Role:   role,   // Custom claim for role
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),                   // Token id, used for revocation
			Subject:   userID,                             // Subject is the user
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)), // Expiry
			IssuedAt:  jwt.NewNumericDate(now),            // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	signed, err := token.SignedString(m.secret)                // Sign the token with the secret
	if err != nil {
		return "", domain.TokenClaims{}, err
	}
	return signed, toDomain(&claims), nil
}

// Parse parses and validates a token string
func (m *JWTManager) Parse(tokenStr string) (domain.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return m.secret, nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return domain.TokenClaims{}, err // Return error if parsing fails
	}
	// Validate token and extract claims
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" || claims.ID == "" {
		return domain.TokenClaims{}, jwt.ErrSignatureInvalid
	}
	return toDomain(claims), nil
}

func toDomain(c *Claims) domain.TokenClaims {
	out := domain.TokenClaims{TokenID: c.ID, UserID: c.UserID, Role: c.Role}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
