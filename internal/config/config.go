package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"taskline-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr string

	// PostgreSQL
	DatabaseURL string

	// Redis
	RedisAddr string
	RedisPass string
	RedisDB   int

	// JWT
	JWT jwt.Config

	// Refresh cookie
	CookiePath   string
	CookieSecure bool

	// Google federation
	GoogleClientID string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		JWT: jwt.Config{
			Secret:     getEnv("JWT_SECRET", ""),
			Issuer:     getEnv("JWT_TOKEN_ISSUER", "taskline"),
			Audience:   getEnv("JWT_TOKEN_AUDIENCE", "taskline"),
			AccessTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},

		CookiePath:   getEnv("REFRESH_COOKIE_PATH", "/api/v1/auth"),
		CookieSecure: strings.ToLower(getEnv("REFRESH_COOKIE_SECURE", "false")) == "true",

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
