package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"store_rating/internal/domain" // Error kinds and pagination
)

// statusOf maps a domain error kind to an HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": reason}. Server side failures are
// logged and their details withheld.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("Request failed")
		msg := "Internal server error"
		if status == http.StatusServiceUnavailable {
			msg = "Service temporarily unavailable"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": domain.Reason(err)})
}

// bindJSON decodes the request body into req, writing 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		// If binding fails, return bad request
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return false
	}
	return true
}

// pageQuery reads page and limit; invalid values fall back to defaults
func pageQuery(c *gin.Context) domain.PageQuery {
	var q domain.PageQuery
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			q.Page = v // Set page if valid
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			q.Limit = v // Clamped to domain.MaxLimit by the services
		}
	}
	return q.Normalize()
}
