package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	SessionSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool
	RedisTimeout  time.Duration

	// Freshness cache settings. Backend is "file" or "redis".
	CacheBackend   string
	CacheDir       string
	CacheMaxAge    time.Duration
	CacheRedisTTL  time.Duration

	// Push publisher (nchan or equivalent) settings.
	PushPublishURL string
	PushTimeout    time.Duration

	// Redis event queue retention.
	EventQueueTTL time.Duration
	EventQueueMax int64

	// Polling endpoint rate limiting (requests/sec per IP and burst).
	PollRateLimit float64
	PollRateBurst int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SessionSecret: getEnv("SESSION_JWT_SECRET", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		RedisTimeout:  getEnvAsDuration("REDIS_TIMEOUT", 2*time.Second),

		CacheBackend:  strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", "file"))),
		CacheDir:      getEnv("CACHE_DIR", "cache/booking_changes"),
		CacheMaxAge:   getEnvAsDuration("CACHE_MAX_AGE", 30*time.Second),
		CacheRedisTTL: getEnvAsDuration("CACHE_REDIS_TTL", 10*time.Minute),

		PushPublishURL: getEnv("PUSH_PUBLISH_URL", "http://127.0.0.1:8083/internal/publish/booking"),
		PushTimeout:    getEnvAsDuration("PUSH_TIMEOUT", 2*time.Second),

		EventQueueTTL: getEnvAsDuration("EVENT_QUEUE_TTL", time.Hour),
		EventQueueMax: int64(getEnvAsInt("EVENT_QUEUE_MAX", 1000)),

		PollRateLimit: getEnvAsFloat("POLL_RATE_LIMIT", 10),
		PollRateBurst: getEnvAsInt("POLL_RATE_BURST", 20),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
