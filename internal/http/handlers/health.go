package handlers

import (
	"net/http"
	"time"

	"github.com/mybookings/bookingpulse/internal/version"
)

// HealthHandler answers liveness probes. The service is alive even when
// Redis is not; the response says which.
type HealthHandler struct {
	versions version.Store
}

// NewHealthHandler creates the health check handler.
func NewHealthHandler(versions version.Store) *HealthHandler {
	return &HealthHandler{versions: versions}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	redisConnected := false
	if h.versions != nil {
		redisConnected = h.versions.Ping(r.Context()) == nil
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"redis_connected": redisConnected,
		"timestamp":       time.Now().Unix(),
	})
}
