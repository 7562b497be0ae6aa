package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"store_rating/internal/middleware" // Actor accessor
	"store_rating/internal/service"    // Business operations
)

// ListStoresHandler returns a page of stores with their rating aggregates
func ListStoresHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pageQuery(c)
		res, err := stores.List(c.Request.Context(), middleware.Actor(c), service.StoreListQuery{
			Page:      page.Page,
			Limit:     page.Limit,
			Search:    c.Query("search"),
			SortBy:    c.Query("sortBy"),
			SortOrder: c.Query("sortOrder"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GetStoreHandler returns one store with its aggregate
func GetStoreHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, err := stores.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, store)
	}
}

// StoreAverageHandler returns the average rating and rating count of a store
func StoreAverageHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		agg, err := stores.Aggregate(c.Request.Context(), middleware.Actor(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"storeId":       c.Param("id"), // Requested store
			"averageRating": agg.Average,   // Mean of all ratings, 0 when unrated
			"totalRatings":  agg.Count,     // Number of ratings
		})
	}
}

// MyStoreHandler returns the store owned by the calling STORE_OWNER
func MyStoreHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, err := stores.Mine(c.Request.Context(), middleware.Actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, store)
	}
}

// CountStoresHandler returns the number of stores
func CountStoresHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := stores.Count(c.Request.Context(), middleware.Actor(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": n})
	}
}

// CreateStoreHandler adds a store, optionally with an existing or a new owner
func CreateStoreHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateStoreInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		created, err := stores.Create(c.Request.Context(), middleware.Actor(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// UpdateStoreHandler changes the name or address of a store
func UpdateStoreHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateStoreInput // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		store, err := stores.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, store)
	}
}

// DeleteStoreHandler removes a store with its ratings
func DeleteStoreHandler(stores *service.StoreService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := stores.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Store deleted successfully"})
	}
}
