package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mybookings/bookingpulse/pkg/logging"
)

// Queue key layout shared with the SSE relay and debug tooling.
const (
	queueGlobal           = "bookings:queue:global"
	queueSpecialistPrefix = "bookings:queue:specialist:"
	queueWorkpointPrefix  = "bookings:queue:workpoint:"
)

// QueuePublisher appends booking events to short-lived Redis lists, one per
// affected entity plus a global list. The lists are a bounded recent-history
// feed for reconnecting push clients and diagnostics, not durable storage:
// per-entity lists expire and every list is trimmed to a maximum length.
type QueuePublisher struct {
	redis  *redis.Client
	ttl    time.Duration
	maxLen int64
	logger *logging.Logger
	tracer trace.Tracer
}

// NewQueuePublisher wires a publisher. Non-positive ttl defaults to one
// hour, non-positive maxLen to 1000 entries.
func NewQueuePublisher(redisClient *redis.Client, ttl time.Duration, maxLen int64, logger *logging.Logger) *QueuePublisher {
	if redisClient == nil {
		panic("events: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxLen <= 0 {
		maxLen = 1000
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QueuePublisher{
		redis:  redisClient,
		ttl:    ttl,
		maxLen: maxLen,
		logger: logger,
		tracer: otel.Tracer("bookingpulse.internal.events"),
	}
}

// Publish appends ev to the global queue and to the queues of the entities
// it names.
func (p *QueuePublisher) Publish(ctx context.Context, ev BookingEventV1) error {
	ctx, span := p.tracer.Start(ctx, "events.publish")
	defer span.End()

	raw, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("events: encode event: %w", err)
	}

	queues := []string{queueGlobal}
	if ev.Data.SpecialistID > 0 {
		queues = append(queues, queueSpecialistPrefix+fmt.Sprint(ev.Data.SpecialistID))
	}
	if ev.Data.WorkpointID > 0 {
		queues = append(queues, queueWorkpointPrefix+fmt.Sprint(ev.Data.WorkpointID))
	}

	pipe := p.redis.Pipeline()
	for _, queue := range queues {
		pipe.LPush(ctx, queue, raw)
		pipe.LTrim(ctx, queue, 0, p.maxLen-1)
		if queue != queueGlobal {
			pipe.Expire(ctx, queue, p.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("events: push to queues: %w", err)
	}
	return nil
}

// Recent returns up to n most-recent events from the global queue, newest
// first. Entries that no longer decode are skipped.
func (p *QueuePublisher) Recent(ctx context.Context, n int64) ([]BookingEventV1, error) {
	return p.recentFrom(ctx, queueGlobal, n)
}

// RecentForSpecialist is Recent over one specialist's queue.
func (p *QueuePublisher) RecentForSpecialist(ctx context.Context, specialistID, n int64) ([]BookingEventV1, error) {
	return p.recentFrom(ctx, queueSpecialistPrefix+fmt.Sprint(specialistID), n)
}

// RecentForWorkpoint is Recent over one workpoint's queue.
func (p *QueuePublisher) RecentForWorkpoint(ctx context.Context, workpointID, n int64) ([]BookingEventV1, error) {
	return p.recentFrom(ctx, queueWorkpointPrefix+fmt.Sprint(workpointID), n)
}

func (p *QueuePublisher) recentFrom(ctx context.Context, queue string, n int64) ([]BookingEventV1, error) {
	if n <= 0 {
		n = 10
	}
	raws, err := p.redis.LRange(ctx, queue, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("events: read queue %s: %w", queue, err)
	}
	out := make([]BookingEventV1, 0, len(raws))
	for _, raw := range raws {
		var ev BookingEventV1
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			p.logger.Warn("skipping undecodable queue entry", "queue", queue)
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
