package db

import (
	"fmt" // Error wrapping

	"github.com/glebarez/sqlite" // Pure Go SQLite driver for GORM
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // PostgreSQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger levels

	"store_rating/internal/config" // Custom package for configuration
)

// Open connects to the database selected by cfg.DBDriver
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL, "":
		dialector = mysql.Open(cfg.DSN())
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		if err := RegisterSQLiteFunctions(); err != nil {
			return nil, fmt.Errorf("failed to register sqlite functions: %w", err)
		}
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	level := logger.Warn
	if cfg.IsProd {
		level = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,                         // Map duplicate keys to gorm.ErrDuplicatedKey
		Logger:         logger.Default.LogMode(level), // Only slow queries and errors
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1) // SQLite allows a single writer
	}
	return db, nil
}
