package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"store_rating/internal/middleware" // Actor accessor
	"store_rating/internal/service"    // Business operations
)

// UpsertRatingHandler records the caller's rating of a store, replacing an earlier one
func UpsertRatingHandler(ratings *service.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RatingInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		rating, err := ratings.Upsert(c.Request.Context(), middleware.Actor(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rating)
	}
}

// StoreRatingsHandler returns a page of a store's ratings with their raters
func StoreRatingsHandler(ratings *service.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := ratings.ListForStore(c.Request.Context(), middleware.Actor(c), c.Param("storeId"), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// MyRatingHandler returns the caller's rating of a store
func MyRatingHandler(ratings *service.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rating, err := ratings.Mine(c.Request.Context(), middleware.Actor(c), c.Param("storeId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rating)
	}
}

// UserRatingsHandler returns a page of the ratings a user gave
func UserRatingsHandler(ratings *service.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := ratings.ListForUser(c.Request.Context(), middleware.Actor(c), c.Param("userId"), pageQuery(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
