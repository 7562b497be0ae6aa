package main

import (
	"context" // Seed context

	"github.com/sirupsen/logrus" // Structured logging

	"store_rating/internal/config" // Custom import path (Config)
	"store_rating/internal/db"     // Custom import path (Database)
	"store_rating/internal/utils"  // Password hashing
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}

	// Seed the administrator from ADMIN_* when configured
	created, err := db.SeedAdmin(context.Background(), gdb, utils.BcryptHasher{Cost: cfg.BcryptCost},
		cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logrus.Fatalf("admin seeding failed: %v", err)
	}
	if !created && cfg.AdminEmail == "" {
		logrus.Warn("ADMIN_EMAIL not set, no administrator seeded")
	}
}
