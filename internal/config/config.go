package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

type Config struct {
	// Server
	Port string
	Env  string

	// Upstream provider (OpenAI-compatible chat completions)
	UpstreamURL    string
	UpstreamAPIKey string
	DefaultModel   string

	// Shared secret checked against the X-App-Key header
	AppKey string

	// Limits
	RateLimitPerMinute int
	MaxUploadBytes     int64

	// CORS
	AllowedOrigins []string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8787"),
		Env:                getEnvOrDefault("ENV", "development"),
		UpstreamURL:        getEnvOrDefault("UPSTREAM_URL", "https://api.openai.com/v1/chat/completions"),
		UpstreamAPIKey:     mustGetEnv("OPENAI_API_KEY"),
		DefaultModel:       getEnvOrDefault("DEFAULT_MODEL", "gpt-4o-mini"),
		AppKey:             mustGetEnv("APP_KEY"),
		RateLimitPerMinute: getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 60),
		MaxUploadBytes:     int64(getEnvAsIntOrDefault("MAX_UPLOAD_BYTES", 10<<20)),
		AllowedOrigins:     []string{getEnvOrDefault("ALLOWED_ORIGIN", "*")},
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
