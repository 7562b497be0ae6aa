package middleware

import (
	"context"  // Request context for token resolution
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"store_rating/internal/domain" // Actor and token claims
)

// Identifier resolves a bearer token into the acting identity
type Identifier interface {
	Identify(ctx context.Context, token string) (*domain.Actor, domain.TokenClaims, error)
}

// JWTAuthMiddleware requires a valid bearer token and stores the actor in the context
func JWTAuthMiddleware(auth Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			// If missing, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		if !identify(c, auth, tokenStr) {
			return
		}
		c.Next() // Proceed to the next handler
	}
}

// OptionalAuthMiddleware identifies the caller when a bearer token is present
// and lets anonymous requests through
func OptionalAuthMiddleware(auth Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok && !identify(c, auth, tokenStr) {
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")) // Extract the token string
	return tokenStr, tokenStr != ""
}

// identify resolves tokenStr and stores the result; on failure it aborts the request
func identify(c *gin.Context, auth Identifier, tokenStr string) bool {
	actor, claims, err := auth.Identify(c.Request.Context(), tokenStr)
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			logrus.WithError(err).Error("Failed to resolve access token")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
			return false
		}
		// If parsing fails, abort with unauthorized status
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.Reason(err)})
		return false
	}
	c.Set(actorKey, actor)   // Store actor in context
	c.Set(claimsKey, claims) // Store claims for logout
	return true
}
