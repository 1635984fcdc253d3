package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mybookings/bookingpulse/internal/observability/metrics"
	"github.com/mybookings/bookingpulse/internal/version"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

// VersionHandler serves the lightweight polling endpoint clients hit when
// they have no live push connection. It reads counters only, never the
// booking database, so a poll stays far cheaper than a calendar fetch.
type VersionHandler struct {
	versions version.Store
	logger   *logging.Logger
	metrics  *metrics.PollMetrics
	now      func() time.Time
}

// NewVersionHandler creates the polling endpoint handler.
func NewVersionHandler(versions version.Store, logger *logging.Logger, m *metrics.PollMetrics) *VersionHandler {
	if versions == nil {
		panic("handlers: version store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &VersionHandler{versions: versions, logger: logger, metrics: m, now: time.Now}
}

// VersionResponse is the polling contract. When the store is unreachable
// every version field is 0 and redis_connected is false; clients must treat
// that as "cannot determine", not as "nothing changed".
type VersionResponse struct {
	Version           int64 `json:"version"`
	SpecialistVersion int64 `json:"specialist_version"`
	WorkpointVersion  int64 `json:"workpoint_version"`
	Timestamp         int64 `json:"timestamp"`
	RedisConnected    bool  `json:"redis_connected"`
}

// GetVersion handles GET /api/bookings/version.
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	specialistID := parseID(query.Get("specialist_id"))
	workpointID := parseID(query.Get("workpoint_id"))
	supervisorMode := query.Get("supervisor_mode") == "true"

	resp := VersionResponse{Timestamp: h.now().Unix()}
	if err := h.versions.Ping(ctx); err != nil {
		h.logger.Warn("version store unreachable", "error", err)
	} else {
		resp.RedisConnected = true
		resp.Version = h.channelVersion(ctx, version.Global())
		if !supervisorMode && specialistID > 0 {
			resp.SpecialistVersion = h.channelVersion(ctx, version.Specialist(specialistID))
		}
		if supervisorMode && workpointID > 0 {
			resp.WorkpointVersion = h.channelVersion(ctx, version.Workpoint(workpointID))
		}
	}
	h.metrics.ObservePoll(resp.RedisConnected)

	w.Header().Set("Cache-Control", "no-cache, must-revalidate")
	writeJSON(w, http.StatusOK, resp)
}

func (h *VersionHandler) channelVersion(ctx context.Context, ch version.Channel) int64 {
	value, err := h.versions.Get(ctx, ch)
	if err != nil {
		h.logger.Warn("version read failed", "channel", ch.String(), "error", err)
		return 0
	}
	return value
}
