package handlers

import (
	"net/http"
	"time"

	"github.com/mybookings/bookingpulse/internal/cache"
	"github.com/mybookings/bookingpulse/internal/events"
	"github.com/mybookings/bookingpulse/internal/version"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

// DebugHandler exposes the change-detection state for one client's view:
// cache ages, version counters, and the recent event feed. Operators use it
// to answer "why didn't this calendar refresh".
type DebugHandler struct {
	cache    cache.Store
	versions version.Store
	queue    *events.QueuePublisher
	maxAge   time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

// NewDebugHandler creates the diagnostics handler. The queue is optional.
func NewDebugHandler(cacheStore cache.Store, versions version.Store, queue *events.QueuePublisher, maxAge time.Duration, logger *logging.Logger) *DebugHandler {
	if cacheStore == nil {
		panic("handlers: cache store required")
	}
	if versions == nil {
		panic("handlers: version store required")
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DebugHandler{
		cache:    cacheStore,
		versions: versions,
		queue:    queue,
		maxAge:   maxAge,
		logger:   logger,
		now:      time.Now,
	}
}

// ScopeStatus describes one cache scope in the debug response.
type ScopeStatus struct {
	Scope      string `json:"scope"`
	Cached     bool   `json:"cached"`
	AgeSeconds int64  `json:"age_seconds,omitempty"`
	Fresh      bool   `json:"fresh"`
}

// DebugResponse is the diagnostics payload.
type DebugResponse struct {
	Timestamp      int64                  `json:"timestamp"`
	RedisConnected bool                   `json:"redis_connected"`
	MaxAgeSeconds  int64                  `json:"max_age_seconds"`
	Versions       map[string]int64       `json:"versions"`
	Scopes         []ScopeStatus          `json:"scopes"`
	RecentEvents   []events.BookingEventV1 `json:"recent_events,omitempty"`
}

// Inspect handles GET /api/bookings/debug.
func (h *DebugHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	specialistID := parseID(query.Get("specialist_id"))
	workpointID := parseID(query.Get("workpoint_id"))

	resp := DebugResponse{
		Timestamp:     h.now().Unix(),
		MaxAgeSeconds: int64(h.maxAge.Seconds()),
		Versions:      map[string]int64{},
	}

	channels := []version.Channel{version.Global()}
	scopes := []cache.Scope{
		cache.ModeScope(cache.ModeSpecialist),
		cache.ModeScope(cache.ModeSupervisor),
	}
	if specialistID > 0 {
		channels = append(channels, version.Specialist(specialistID))
		scopes = append(scopes, cache.SpecialistScope(specialistID))
	}
	if workpointID > 0 {
		channels = append(channels, version.Workpoint(workpointID))
		scopes = append(scopes, cache.SupervisorScope(workpointID))
	}

	if err := h.versions.Ping(ctx); err == nil {
		resp.RedisConnected = true
		for _, ch := range channels {
			value, err := h.versions.Get(ctx, ch)
			if err != nil {
				h.logger.Warn("version read failed", "channel", ch.String(), "error", err)
				continue
			}
			resp.Versions[ch.String()] = value
		}
	}

	for _, scope := range scopes {
		status := ScopeStatus{Scope: scope.Key()}
		if age, ok := h.cache.Age(ctx, scope); ok {
			status.Cached = true
			status.AgeSeconds = int64(age.Seconds())
			status.Fresh = age <= h.maxAge
		}
		resp.Scopes = append(resp.Scopes, status)
	}

	if h.queue != nil && resp.RedisConnected {
		if recent, err := h.queue.Recent(ctx, 10); err == nil {
			resp.RecentEvents = recent
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
