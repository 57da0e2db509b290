package config

import (
	"log/slog" // Use the structured logger
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	DatabaseURL   string
	AccountsFile  string
	ReapInterval  time.Duration
	WebhookURL    string
	WebhookSecret string
	LogLevel      slog.Level
}

// LoadConfig reads .env file and returns a Config struct
func LoadConfig() *Config {
	// Try loading .env file (it might not exist in Production, which is fine)
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on System Env Variables")
	}

	return &Config{
		Port:          getEnv("PORT", "3000"),
		Env:           getEnv("ENV", "development"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AccountsFile:  getEnv("ACCOUNTS_FILE", "users.txt"),
		ReapInterval:  getDuration("REAP_INTERVAL", time.Minute),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
		LogLevel:      getLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

// Helper to get env with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func getLevel(key string, fallback slog.Level) slog.Level {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		slog.Warn("Invalid log level, using default", "key", key, "value", raw)
		return fallback
	}
	return level
}
