package api

import (
	"context"  // Health probe context
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint

	"store_rating/internal/middleware" // Authentication and metrics middleware
	"store_rating/internal/service"    // Business operations
)

// Services are the operations exposed over HTTP
type Services struct {
	Auth    *service.AuthService
	Users   *service.UserService
	Stores  *service.StoreService
	Ratings *service.RatingService
	// Health reports whether storage is reachable; nil means always healthy
	Health func(ctx context.Context) error
}

// NewRouter registers every route on a new gin engine
func NewRouter(s Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.PrometheusMiddleware())

	auth := middleware.JWTAuthMiddleware(s.Auth)
	optional := middleware.OptionalAuthMiddleware(s.Auth)
	admin := middleware.AdminOnlyMiddleware()

	r.GET("/healthz", healthHandler(s.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	r.POST("/users/register", RegisterHandler(s.Users))
	r.POST("/auth/login", LoginHandler(s.Auth))
	authGroup := r.Group("/auth", auth)
	authGroup.POST("/logout", LogoutHandler(s.Auth))
	authGroup.GET("/me", MeHandler(s.Users))
	authGroup.PATCH("/password", UpdatePasswordHandler(s.Users))

	// Store routes
	r.GET("/stores", optional, ListStoresHandler(s.Stores))
	r.GET("/stores/count", auth, CountStoresHandler(s.Stores))
	r.GET("/stores/mine", auth, MyStoreHandler(s.Stores))
	r.GET("/stores/:id", optional, GetStoreHandler(s.Stores))
	r.GET("/stores/:id/average", optional, StoreAverageHandler(s.Stores))
	r.POST("/stores", auth, CreateStoreHandler(s.Stores))
	r.PATCH("/stores/:id", auth, UpdateStoreHandler(s.Stores))
	r.DELETE("/stores/:id", auth, DeleteStoreHandler(s.Stores))

	// User administration routes (protected, admin only)
	adminGroup := r.Group("/users", auth, admin)
	adminGroup.GET("", ListUsersHandler(s.Users))
	adminGroup.GET("/count", CountUsersHandler(s.Users))
	adminGroup.POST("", CreateUserHandler(s.Users))
	adminGroup.POST("/admin", CreateAdminHandler(s.Users))
	adminGroup.GET("/:id", GetUserHandler(s.Users))
	adminGroup.DELETE("/:id", DeleteUserHandler(s.Users))
	r.PATCH("/users/:id", auth, UpdateUserHandler(s.Users))

	// Rating routes
	ratingGroup := r.Group("/ratings", auth)
	ratingGroup.PUT("", UpsertRatingHandler(s.Ratings))
	ratingGroup.GET("/stores/:storeId", StoreRatingsHandler(s.Ratings))
	ratingGroup.GET("/stores/:storeId/mine", MyRatingHandler(s.Ratings))
	ratingGroup.GET("/users/:userId", UserRatingsHandler(s.Ratings))

	return r
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
