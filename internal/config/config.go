package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort       int
	DatabasePath     string
	JWTSecret        string
	TokenTTL         time.Duration
	AllowedOrigins   []string
	DueSweepSchedule string // Standard cron expression for the due-date sweep
	SeedDemoData     bool
	LogLevel         string
}

// Load loads configuration from a .env file (if present) and environment
// variables, falling back to defaults.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment may be set directly.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:       port,
		DatabasePath:     getEnv("DATABASE_PATH", "./taskhive.db"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		TokenTTL:         ttl,
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		DueSweepSchedule: getEnv("DUE_SWEEP_SCHEDULE", "*/5 * * * *"),
		SeedDemoData:     getEnv("SEED_DEMO_DATA", "false") == "true",
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
