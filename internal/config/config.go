package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Configuration
	HTTP HTTPConfig

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// Session cookie configuration
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig

	// SeedDemoData loads the demo catalog into an empty database on startup
	SeedDemoData bool
}

// HTTPConfig holds listener and browser-facing settings
type HTTPConfig struct {
	Addr        string
	BaseURL     string   // Used to build password reset links
	CORSOrigins []string // Origins allowed to call the API from a separately served UI
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// SessionConfig holds session cookie settings
type SessionConfig struct {
	CookieName   string
	CookieSecure bool
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	httpAddr := getEnv("HTTP_ADDR", ":8080")
	baseURL := strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:8080"), "/")

	corsOrigins := splitList(getEnv("CORS_ORIGINS", "http://localhost:5173"))

	// Database URL - default to a local file, allow override for dev
	dbURL := getEnv("DATABASE_URL", "plateadmin.sqlite")

	// Redis address - default to localhost:6379, allow override for dev/docker
	redisAddr := getEnv("REDIS_ADDRESS", "localhost:6379")

	// Logging configuration - defaults suitable for production
	logLevel := getEnv("LOG_LEVEL", "info")
	logFormat := getEnv("LOG_FORMAT", "json")

	return &Config{
		HTTP: HTTPConfig{
			Addr:        httpAddr,
			BaseURL:     baseURL,
			CORSOrigins: corsOrigins,
		},
		Database: DatabaseConfig{
			URL: dbURL,
		},
		Redis: RedisConfig{
			Address: redisAddr,
		},
		Session: SessionConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "plateadmin_session"),
			CookieSecure: getBool("COOKIE_SECURE", false),
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
		SeedDemoData: getBool("SEED_DEMO_DATA", false),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
