package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mybookings/bookingpulse/pkg/logging"
)

const redisKeyPrefix = "bookings:cache:"

// defaultRedisTTL bounds how long a never-invalidated entry lingers in Redis.
// Freshness is still decided by the stored timestamp against the caller's
// max age; the TTL is storage garbage collection, not the freshness window.
const defaultRedisTTL = 10 * time.Minute

// RedisStore keeps cache entries in Redis, for deployments where request
// handlers run on multiple hosts without a shared filesystem. Same envelope
// format and semantics as FileStore; Redis failures degrade to misses.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
	now    func() time.Time
}

// NewRedisStore returns a RedisStore over client. A non-positive ttl uses
// the default retention.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisStore {
	if client == nil {
		panic("cache: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger, now: time.Now}
}

func (s *RedisStore) key(scope Scope) string {
	return redisKeyPrefix + scope.Key()
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, scope Scope, maxAge time.Duration) Result {
	raw, err := s.client.Get(ctx, s.key(scope)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache read failed", "scope", scope.Key(), "error", err)
		}
		return Result{Status: StatusMiss}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Timestamp <= 0 {
		s.logger.Warn("cache entry corrupted", "scope", scope.Key())
		return Result{Status: StatusCorrupted}
	}

	age := s.age(env)
	if age > maxAge {
		return Result{Status: StatusMiss}
	}
	return Result{Status: StatusHit, Payload: env.Data, Age: age}
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, scope Scope, payload json.RawMessage) error {
	env := envelope{Timestamp: s.now().Unix(), Data: payload}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache: encode entry for %s: %w", scope.Key(), err)
	}
	if err := s.client.Set(ctx, s.key(scope), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: write entry for %s: %w", scope.Key(), err)
	}
	return nil
}

// Invalidate implements Store.
func (s *RedisStore) Invalidate(ctx context.Context, scope Scope) error {
	if err := s.client.Del(ctx, s.key(scope)).Err(); err != nil {
		return fmt.Errorf("cache: invalidate %s: %w", scope.Key(), err)
	}
	return nil
}

// Age implements Store.
func (s *RedisStore) Age(ctx context.Context, scope Scope) (time.Duration, bool) {
	raw, err := s.client.Get(ctx, s.key(scope)).Bytes()
	if err != nil {
		return 0, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Timestamp <= 0 {
		return 0, false
	}
	return s.age(env), true
}

// IsFresh implements Store.
func (s *RedisStore) IsFresh(ctx context.Context, scope Scope, maxAge time.Duration) bool {
	age, ok := s.Age(ctx, scope)
	return ok && age <= maxAge
}

func (s *RedisStore) age(env envelope) time.Duration {
	return time.Duration(s.now().Unix()-env.Timestamp) * time.Second
}
