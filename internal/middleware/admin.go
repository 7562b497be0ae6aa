package middleware

import (
	"net/http" // HTTP status codes
	"slices"   // Role lookup

	"github.com/gin-gonic/gin" // Gin web framework

	"store_rating/internal/domain" // Actor and roles
)

// Context keys set by the authentication middleware
const (
	actorKey  = "actor"
	claimsKey = "claims"
)

// Actor returns the authenticated actor, nil for anonymous requests
func Actor(c *gin.Context) *domain.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*domain.Actor)
	return actor
}

// Claims returns the claims of the presented access token
func Claims(c *gin.Context) (domain.TokenClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return domain.TokenClaims{}, false
	}
	claims, ok := v.(domain.TokenClaims)
	return claims, ok
}

// RoleOnlyMiddleware admits actors holding one of roles. The role was read
// from the database when the token was resolved, so demotions apply at once.
func RoleOnlyMiddleware(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		// Check if an actor exists in context
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !slices.Contains(roles, actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}

// AdminOnlyMiddleware admits ADMIN actors only
func AdminOnlyMiddleware() gin.HandlerFunc {
	return RoleOnlyMiddleware(domain.RoleAdmin)
}
