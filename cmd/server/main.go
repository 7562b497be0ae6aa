package main

import (
	"context" // context package is needed for Redis operations
	"os"      // Log output

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging

	"store_rating/internal/api"        // Custom package for API handlers
	"store_rating/internal/config"     // Custom package for configuration
	"store_rating/internal/db"         // Database connection
	"store_rating/internal/policy"     // Access policy
	"store_rating/internal/repository" // Entity store
	"store_rating/internal/service"    // Business operations
	"store_rating/internal/utils"      // Tokens, passwords and Redis helpers
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	setupLogger(cfg)

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database selected by DB_DRIVER
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		logrus.Fatalf("failed to get DB handle: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	repo := repository.New(gdb)
	access := policy.Default()
	hasher := utils.BcryptHasher{Cost: cfg.BcryptCost}
	tokens := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	r := api.NewRouter(api.Services{
		Auth: service.NewAuthService(repo, tokens, hasher,
			utils.NewTokenRevoker(redisClient),
			utils.NewLoginThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginWindow)),
		Users:   service.NewUserService(repo, access, hasher),
		Stores:  service.NewStoreService(repo, access, service.NewAggregator(repo), hasher),
		Ratings: service.NewRatingService(repo, access),
		Health:  sqlDB.PingContext,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithFields(logrus.Fields{"port": cfg.AppPort, "db_driver": cfg.DBDriver}).Info("Server running")
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}

// setupLogger applies LOG_FORMAT and LOG_LEVEL
func setupLogger(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
