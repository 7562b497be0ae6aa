package config

import (
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort          string        // Application port
	IsProd           bool          // Is production environment
	LogLevel         string        // Logrus level name
	LogFormat        string        // "text" or "json"
	DBDriver         string        // mysql, postgres or sqlite
	DBUser           string        // Database user
	DBPassword       string        // Database password
	DBHost           string        // Database host
	DBPort           string        // Database port
	DBName           string        // Database name, file path for sqlite
	DBSSLMode        string        // Postgres sslmode
	JWTSecret        string        // JWT secret key
	JWTTTL           time.Duration // Access token lifetime
	RedisAddr        string        // Redis server address
	RedisPass        string        // Redis password
	RedisDB          int           // Redis database number
	LoginMaxAttempts int64         // Failed logins allowed per window
	LoginWindow      time.Duration // Failed login window
	BcryptCost       int           // Bcrypt cost, 0 for the library default
	AdminName        string        // Seeded administrator name
	AdminEmail       string        // Seeded administrator email
	AdminPassword    string        // Seeded administrator password
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:          getenv("APP_PORT", "8080"),
		IsProd:           os.Getenv("IS_PROD") == "true",
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogFormat:        getenv("LOG_FORMAT", "text"),
		DBDriver:         getenv("DB_DRIVER", DriverMySQL),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBHost:           getenv("DB_HOST", "localhost"),
		DBPort:           os.Getenv("DB_PORT"),
		DBName:           os.Getenv("DB_NAME"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           duration("JWT_TTL", 24*time.Hour),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPass:        os.Getenv("REDIS_PASS"),
		RedisDB:          integer("REDIS_DB", 0),
		LoginMaxAttempts: int64(integer("LOGIN_MAX_ATTEMPTS", 5)),
		LoginWindow:      duration("LOGIN_WINDOW", 15*time.Minute),
		BcryptCost:       integer("BCRYPT_COST", 0),
		AdminName:        getenv("ADMIN_NAME", "System Administrator Account"),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port, c.DBSSLMode)
	case DriverSQLite:
		if c.DBName == "" {
			return "file::memory:?cache=shared&_pragma=foreign_keys(1)"
		}
		return "file:" + c.DBName + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func integer(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

// duration accepts Go durations ("15m") or plain seconds
func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
