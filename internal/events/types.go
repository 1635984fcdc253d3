package events

import "time"

// Booking mutation kinds as they appear on the wire.
const (
	TypeCreate = "create"
	TypeUpdate = "update"
	TypeDelete = "delete"
)

// ValidType reports whether t is a known mutation kind.
func ValidType(t string) bool {
	return t == TypeCreate || t == TypeUpdate || t == TypeDelete
}

// BookingChange carries the entity ids a mutation touched. The
// working_point_id field name matches the existing consumers of the queue.
type BookingChange struct {
	BookingID    string `json:"booking_id,omitempty"`
	SpecialistID int64  `json:"specialist_id,omitempty"`
	WorkpointID  int64  `json:"working_point_id,omitempty"`
}

// BookingEventV1 is the envelope pushed onto the Redis queues and delivered
// to push subscribers: {"type","timestamp","data"}.
type BookingEventV1 struct {
	Type      string        `json:"type"`
	Timestamp int64         `json:"timestamp"`
	Data      BookingChange `json:"data"`
}

// NewBookingEvent stamps a BookingEventV1 with the current time.
func NewBookingEvent(eventType string, change BookingChange) BookingEventV1 {
	return BookingEventV1{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      change,
	}
}
