package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mybookings/bookingpulse/internal/http/handlers"
	httpmiddleware "github.com/mybookings/bookingpulse/internal/http/middleware"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	VersionHandler *handlers.VersionHandler
	EventsHandler  *handlers.BookingEventsHandler
	DebugHandler   *handlers.DebugHandler
	HealthHandler  *handlers.HealthHandler
	MetricsHandler http.Handler

	SessionSecret      string
	CORSAllowedOrigins []string
	PollRateLimit      float64
	PollRateBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (probes, metrics)
	r.Group(func(public chi.Router) {
		if cfg.HealthHandler != nil {
			public.Get("/health", cfg.HealthHandler.Check)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Session-authenticated booking API
	r.Route("/api/bookings", func(api chi.Router) {
		api.Use(httpmiddleware.SessionJWT(cfg.SessionSecret))

		if cfg.VersionHandler != nil {
			poll := api
			if cfg.PollRateLimit > 0 {
				poll = api.With(httpmiddleware.RateLimit(cfg.PollRateLimit, cfg.PollRateBurst))
			}
			poll.Get("/version", cfg.VersionHandler.GetVersion)
		}
		if cfg.EventsHandler != nil {
			api.Post("/events", cfg.EventsHandler.Handle)
		}
		if cfg.DebugHandler != nil {
			api.Get("/debug", cfg.DebugHandler.Inspect)
		}
	})

	return r
}
