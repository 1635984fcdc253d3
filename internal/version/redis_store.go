package version

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultTimeout = 2 * time.Second

// RedisStore implements Store on a Redis counter per channel using INCR,
// which is atomic on the server, so concurrent bumps never read-then-write
// a stale base.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
	tracer  trace.Tracer
}

// NewRedisStore wraps client with per-call timeouts. A non-positive timeout
// uses the default.
func NewRedisStore(client *redis.Client, timeout time.Duration) *RedisStore {
	if client == nil {
		panic("version: redis client cannot be nil")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RedisStore{
		client:  client,
		timeout: timeout,
		tracer:  otel.Tracer("bookingpulse.internal.version"),
	}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, ch Channel) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "version.get")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	value, err := s.client.Get(ctx, ch.redisKey()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("version: get %s: %w", ch, err)
	}
	return value, nil
}

// Increment implements Store.
func (s *RedisStore) Increment(ctx context.Context, ch Channel) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "version.increment")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	value, err := s.client.Incr(ctx, ch.redisKey()).Result()
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("version: increment %s: %w", ch, err)
	}
	return value, nil
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("version: ping: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
