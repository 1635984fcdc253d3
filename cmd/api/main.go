package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mybookings/bookingpulse/internal/api/router"
	"github.com/mybookings/bookingpulse/internal/app/bootstrap"
	"github.com/mybookings/bookingpulse/internal/bookings"
	appconfig "github.com/mybookings/bookingpulse/internal/config"
	"github.com/mybookings/bookingpulse/internal/events"
	"github.com/mybookings/bookingpulse/internal/http/handlers"
	"github.com/mybookings/bookingpulse/internal/observability/metrics"
	"github.com/mybookings/bookingpulse/internal/push"
	"github.com/mybookings/bookingpulse/internal/version"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bookingpulse API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"cache_backend", cfg.CacheBackend,
	)
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_JWT_SECRET not set, all booking API requests will be rejected")
	}

	ctx := context.Background()

	// Redis backs the version counters and event queues. The server still
	// starts when Redis is down and reports redis_connected false to pollers.
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, false)
	if redisClient == nil {
		logger.Error("REDIS_ADDR is required")
		os.Exit(1)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "error", err)
	}

	cacheStore, err := bootstrap.BuildCacheStore(cfg, redisClient, logger)
	if err != nil {
		logger.Error("failed to build cache store", "error", err)
		os.Exit(1)
	}

	// Metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	broadcastMetrics := metrics.NewBroadcastMetrics(reg)
	pollMetrics := metrics.NewPollMetrics(reg)

	// Fanout pipeline
	versions := version.NewRedisStore(redisClient, cfg.RedisTimeout)
	queue := events.NewQueuePublisher(redisClient, cfg.EventQueueTTL, cfg.EventQueueMax, logger)
	pusher := push.NewPublisher(cfg.PushPublishURL, cfg.PushTimeout, logger, broadcastMetrics)
	broadcaster := bookings.NewBroadcaster(cacheStore, versions, queue, pusher, logger, broadcastMetrics)

	// Handlers
	versionHandler := handlers.NewVersionHandler(versions, logger, pollMetrics)
	eventsHandler := handlers.NewBookingEventsHandler(broadcaster, logger)
	debugHandler := handlers.NewDebugHandler(cacheStore, versions, queue, cfg.CacheMaxAge, logger)
	healthHandler := handlers.NewHealthHandler(versions)

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		VersionHandler:     versionHandler,
		EventsHandler:      eventsHandler,
		DebugHandler:       debugHandler,
		HealthHandler:      healthHandler,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		SessionSecret:      cfg.SessionSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PollRateLimit:      cfg.PollRateLimit,
		PollRateBurst:      cfg.PollRateBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := versions.Close(); err != nil {
		logger.Warn("closing version store", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
