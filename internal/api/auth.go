package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"store_rating/internal/middleware" // Actor and claims accessors
	"store_rating/internal/service"    // Business operations
)

// RegisterHandler signs up a new USER account
func RegisterHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.Register(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user) // Return the created user
	}
}

// LoginHandler authenticates a user and returns an access token
func LoginHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.LoginInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		session, err := auth.Login(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, session) // Return the token in the response
	}
}

// LogoutHandler revokes the presented access token
func LogoutHandler(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.Claims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := auth.Logout(c.Request.Context(), claims); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// MeHandler returns the authenticated user's profile
func MeHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Me(c.Request.Context(), middleware.Actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdatePasswordHandler replaces the authenticated user's password
func UpdatePasswordHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdatePasswordInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		if err := users.UpdatePassword(c.Request.Context(), middleware.Actor(c), req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}
