package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL     string
	AppPassword     string
	SessionSecret   string
	Port            string
	LogLevel        string
	LogFormat       string
	Env             string
	MigrationsPath  string
	ImportRulesFile string
	TelegramToken   string
	TelegramChatID  int64
	DigestSchedule  string
	Location        *time.Location
	CORSOrigins     []string

	// GeneratedSecret is true when SESSION_SECRET was empty and a random
	// secret was generated; sessions then end with the process.
	GeneratedSecret bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		Port:            getEnvOrDefault("PORT", "8080"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
		Env:             getEnvOrDefault("ENV", "development"),
		MigrationsPath:  getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
		ImportRulesFile: os.Getenv("IMPORT_RULES_FILE"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		DigestSchedule:  getEnvOrDefault("DIGEST_SCHEDULE", "0 7 * * *"),
	}

	// Required environment variables
	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.AppPassword = os.Getenv("APP_PASSWORD"); cfg.AppPassword == "" {
		return nil, fmt.Errorf("APP_PASSWORD environment variable is required")
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = uuid.NewString() + uuid.NewString()
		cfg.GeneratedSecret = true
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
		cfg.TelegramChatID = id
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	tz := getEnvOrDefault("TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// TelegramEnabled reports whether the bot should run.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
