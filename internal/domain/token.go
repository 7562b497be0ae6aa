package domain

import "time"

// TokenClaims are the facts carried by an access token.
type TokenClaims struct {
	TokenID   string
	UserID    string
	Role      Role
	ExpiresAt time.Time
}
