// Package bookings owns the booking-change fanout: when a booking mutates,
// the affected freshness-cache scopes are invalidated, the version channels
// are bumped, the event lands on the Redis queues, and connected clients get
// a push. The mutation itself (SQL, validation, rendering) lives in the
// calling layer.
package bookings

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mybookings/bookingpulse/internal/cache"
	"github.com/mybookings/bookingpulse/internal/events"
	"github.com/mybookings/bookingpulse/internal/observability/metrics"
	"github.com/mybookings/bookingpulse/internal/push"
	"github.com/mybookings/bookingpulse/internal/version"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

// Mutation describes one booking change reported by a collaborator.
type Mutation struct {
	Type         string
	BookingID    string
	SpecialistID int64
	WorkpointID  int64
}

// Validate checks the mutation kind.
func (m Mutation) Validate() error {
	if !events.ValidType(m.Type) {
		return fmt.Errorf("bookings: unknown mutation type %q", m.Type)
	}
	return nil
}

// Result reports which fanout steps completed. The fanout never fails as a
// whole: a degraded dependency costs freshness or push latency, both of
// which the polling fallback and cache TTL recover from.
type Result struct {
	InvalidatedScopes []string `json:"invalidated_scopes"`
	BumpedChannels    []string `json:"bumped_channels"`
	Queued            bool     `json:"queued"`
	Pushed            bool     `json:"pushed"`
	Degraded          bool     `json:"degraded"`
}

// Broadcaster runs the fanout. Queue and push are optional; a nil dependency
// skips that step.
type Broadcaster struct {
	cache    cache.Store
	versions version.Store
	queue    *events.QueuePublisher
	push     *push.Publisher
	logger   *logging.Logger
	metrics  *metrics.BroadcastMetrics
	tracer   trace.Tracer
}

// NewBroadcaster wires a Broadcaster. Cache and version stores are required.
func NewBroadcaster(cacheStore cache.Store, versions version.Store, queue *events.QueuePublisher, pusher *push.Publisher, logger *logging.Logger, m *metrics.BroadcastMetrics) *Broadcaster {
	if cacheStore == nil {
		panic("bookings: cache store required")
	}
	if versions == nil {
		panic("bookings: version store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Broadcaster{
		cache:    cacheStore,
		versions: versions,
		queue:    queue,
		push:     pusher,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("bookingpulse.internal.bookings"),
	}
}

// BookingChanged fans out one mutation. Every step is attempted regardless
// of earlier failures.
func (b *Broadcaster) BookingChanged(ctx context.Context, m Mutation) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}

	ctx, span := b.tracer.Start(ctx, "bookings.changed")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking.mutation", m.Type),
		attribute.Int64("booking.specialist_id", m.SpecialistID),
		attribute.Int64("booking.workpoint_id", m.WorkpointID),
	)

	var res Result
	res.InvalidatedScopes = b.invalidateScopes(ctx, m, &res)
	res.BumpedChannels = b.bumpVersions(ctx, m, &res)

	ev := events.NewBookingEvent(m.Type, events.BookingChange{
		BookingID:    m.BookingID,
		SpecialistID: m.SpecialistID,
		WorkpointID:  m.WorkpointID,
	})

	if b.queue != nil {
		if err := b.queue.Publish(ctx, ev); err != nil {
			span.RecordError(err)
			b.logger.Warn("event queue publish failed", "error", err)
			res.Degraded = true
			b.metrics.ObserveStep("queue", false)
		} else {
			res.Queued = true
			b.metrics.ObserveStep("queue", true)
		}
	}

	if b.push != nil {
		ok := b.push.PublishBookingEvent(ctx, ev)
		res.Pushed = ok
		if !ok {
			res.Degraded = true
		}
		b.metrics.ObserveStep("push", ok)
	}

	b.logger.Info("booking change fanned out",
		"type", m.Type,
		"booking_id", m.BookingID,
		"scopes", res.InvalidatedScopes,
		"channels", res.BumpedChannels,
		"queued", res.Queued,
		"pushed", res.Pushed,
	)
	return res, nil
}

// affectedScopes lists every cache scope a mutation can make stale: the
// entity-specific scopes plus the mode-wide views that include the entity.
func affectedScopes(m Mutation) []cache.Scope {
	scopes := []cache.Scope{
		cache.ModeScope(cache.ModeSpecialist),
		cache.ModeScope(cache.ModeSupervisor),
	}
	if m.SpecialistID > 0 {
		scopes = append(scopes, cache.SpecialistScope(m.SpecialistID))
	}
	if m.WorkpointID > 0 {
		scopes = append(scopes, cache.SupervisorScope(m.WorkpointID))
	}
	return scopes
}

func (b *Broadcaster) invalidateScopes(ctx context.Context, m Mutation, res *Result) []string {
	var done []string
	for _, scope := range affectedScopes(m) {
		if err := b.cache.Invalidate(ctx, scope); err != nil {
			b.logger.Warn("cache invalidation failed", "scope", scope.Key(), "error", err)
			res.Degraded = true
			b.metrics.ObserveStep("invalidate", false)
			continue
		}
		b.metrics.ObserveStep("invalidate", true)
		done = append(done, scope.Key())
	}
	return done
}

func (b *Broadcaster) bumpVersions(ctx context.Context, m Mutation, res *Result) []string {
	channels := []version.Channel{version.Global()}
	if m.SpecialistID > 0 {
		channels = append(channels, version.Specialist(m.SpecialistID))
	}
	if m.WorkpointID > 0 {
		channels = append(channels, version.Workpoint(m.WorkpointID))
	}

	var done []string
	for _, ch := range channels {
		if _, err := b.versions.Increment(ctx, ch); err != nil {
			b.logger.Warn("version bump failed", "channel", ch.String(), "error", err)
			res.Degraded = true
			b.metrics.ObserveStep("version", false)
			continue
		}
		b.metrics.ObserveStep("version", true)
		done = append(done, ch.String())
	}
	return done
}
