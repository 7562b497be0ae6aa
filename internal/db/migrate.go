package db

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library

	"store_rating/internal/domain" // Importing domain models
)

// Migrate creates or updates the schema of users, stores and ratings
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Store{}, &domain.Rating{}); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// Hasher hashes the seeded administrator password
type Hasher interface {
	Hash(password string) (string, error)
}

// SeedAdmin creates the administrator account unless a user with email
// already exists. It reports whether an account was created.
func SeedAdmin(ctx context.Context, db *gorm.DB, hasher Hasher, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil // Nothing configured
	}
	var existing domain.User
	err := db.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err == nil {
		return false, nil // Already seeded
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return false, err
	}
	admin := &domain.User{Name: name, Email: email, Password: hash, Role: domain.RoleAdmin}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return false, err
	}
	logrus.WithFields(logrus.Fields{"user_id": admin.ID, "email": email}).Info("Admin account seeded")
	return true, nil
}
