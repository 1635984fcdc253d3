package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mybookings/bookingpulse/internal/bookings"
	"github.com/mybookings/bookingpulse/internal/events"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

// BookingEventsHandler is the entry point booking CRUD collaborators call
// after committing a mutation, so the fanout (cache invalidation, version
// bumps, queues, push) runs exactly once per change.
type BookingEventsHandler struct {
	broadcaster *bookings.Broadcaster
	logger      *logging.Logger
}

// NewBookingEventsHandler creates the mutation hook handler.
func NewBookingEventsHandler(broadcaster *bookings.Broadcaster, logger *logging.Logger) *BookingEventsHandler {
	if broadcaster == nil {
		panic("handlers: broadcaster required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingEventsHandler{broadcaster: broadcaster, logger: logger}
}

// BookingEventRequest is the mutation notice posted by collaborators.
type BookingEventRequest struct {
	Type         string `json:"type"`
	BookingID    string `json:"booking_id,omitempty"`
	SpecialistID int64  `json:"specialist_id,omitempty"`
	WorkpointID  int64  `json:"workpoint_id,omitempty"`
}

// BookingEventResponse reports the fanout outcome.
type BookingEventResponse struct {
	Status string          `json:"status"`
	Result bookings.Result `json:"result"`
}

// Handle handles POST /api/bookings/events.
func (h *BookingEventsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req BookingEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !events.ValidType(req.Type) {
		writeError(w, http.StatusBadRequest, "type must be create, update or delete")
		return
	}

	result, err := h.broadcaster.BookingChanged(r.Context(), bookings.Mutation{
		Type:         req.Type,
		BookingID:    req.BookingID,
		SpecialistID: req.SpecialistID,
		WorkpointID:  req.WorkpointID,
	})
	if err != nil {
		h.logger.Error("booking change fanout rejected", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := "ok"
	if result.Degraded {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, BookingEventResponse{Status: status, Result: result})
}
