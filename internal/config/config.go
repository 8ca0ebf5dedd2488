package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// CatalogFile is the JSON file backing the course catalog.
	CatalogFile string
	// CaseSensitiveLookup restores exact-match lookups on GET /course/:code.
	// Duplicate checks on append stay case-insensitive either way.
	CaseSensitiveLookup bool

	// RedisURL enables the event queue, the stats worker and /api/v1/stats.
	// Empty disables Redis entirely.
	RedisURL string
	// EventBufferSize bounds the in-process queues of the async event sinks.
	EventBufferSize int

	// SubmitRateLimit is the number of course submissions allowed per IP per minute.
	SubmitRateLimit int

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "5001"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "auto"),
		CatalogFile:         getEnv("CATALOG_FILE", "course_catalog.json"),
		CaseSensitiveLookup: getEnvBool("CATALOG_CASE_SENSITIVE_LOOKUP", false),
		RedisURL:            getEnv("REDIS_URL", ""),
		EventBufferSize:     getEnvInt("EVENT_BUFFER_SIZE", 256),
		SubmitRateLimit:     getEnvInt("SUBMIT_RATE_LIMIT", 30),
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

// RedisEnabled reports whether a Redis URL was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
