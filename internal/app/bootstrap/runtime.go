// Package bootstrap wires infrastructure clients and stores from config so
// cmd/api stays a thin composition root.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mybookings/bookingpulse/internal/cache"
	appconfig "github.com/mybookings/bookingpulse/internal/config"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildCacheStore selects the freshness-cache backend from config. The redis
// backend needs a live client; without one it falls back to the file backend
// so booking pages keep their cache even when Redis is down.
func BuildCacheStore(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (cache.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.CacheBackend {
	case "redis":
		if redisClient == nil {
			logger.Warn("redis cache backend requested but redis unavailable, using file backend", "dir", cfg.CacheDir)
			break
		}
		return cache.NewRedisStore(redisClient, cfg.CacheRedisTTL, logger), nil
	case "", "file":
	default:
		return nil, fmt.Errorf("bootstrap: unknown cache backend %q", cfg.CacheBackend)
	}

	store, err := cache.NewFileStore(cfg.CacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: file cache store: %w", err)
	}
	return store, nil
}
