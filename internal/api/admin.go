package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"store_rating/internal/middleware" // Actor accessor
	"store_rating/internal/service"    // Business operations
)

// ListUsersHandler returns a page of users with optional search, sort and role filter
func ListUsersHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageQuery(c)
		res, err := users.List(c.Request.Context(), middleware.Actor(c), service.UserListQuery{
			Page:      page.Page,
			Limit:     page.Limit,
			Search:    c.Query("search"),
			SortBy:    c.Query("sortBy"),
			SortOrder: c.Query("sortOrder"),
			FilterBy:  c.Query("filterBy"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// CountUsersHandler returns the total number of users and the count per role
func CountUsersHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := users.Counts(c.Request.Context(), middleware.Actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, counts)
	}
}

// GetUserHandler returns one user
func GetUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// CreateUserHandler adds an account of any role
func CreateUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateUserInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.Create(c.Request.Context(), middleware.Actor(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// CreateAdminHandler adds an ADMIN account
func CreateAdminHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.CreateAdmin(c.Request.Context(), middleware.Actor(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// UpdateUserHandler changes a user's profile; role changes need ADMIN
func UpdateUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateUserInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// DeleteUserHandler removes a user with its ratings
func DeleteUserHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := users.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
