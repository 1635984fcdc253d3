package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mybookings/bookingpulse/internal/observability/metrics"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

// ComputeFunc produces the booking payload for a scope when no fresh cache
// entry exists.
type ComputeFunc func(ctx context.Context) (json.RawMessage, error)

// Loader is the read path used by calendar-rendering collaborators: serve
// from cache when fresh, otherwise recompute and refill. Concurrent
// recomputes for the same scope are collapsed through singleflight; that is
// purely an economy, correctness does not depend on it.
type Loader struct {
	store   Store
	maxAge  time.Duration
	group   singleflight.Group
	logger  *logging.Logger
	metrics *metrics.CacheMetrics
}

// NewLoader wires a Loader over store with the given default max age.
func NewLoader(store Store, maxAge time.Duration, logger *logging.Logger, m *metrics.CacheMetrics) *Loader {
	if store == nil {
		panic("cache: store required")
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Loader{store: store, maxAge: maxAge, logger: logger, metrics: m}
}

// Load returns the payload for scope, from cache when fresh. The bool return
// reports whether the payload came from cache. A compute error is returned
// as-is; cache write failures after a successful compute are logged and
// swallowed, the payload is still returned.
func (l *Loader) Load(ctx context.Context, scope Scope, compute ComputeFunc) (json.RawMessage, bool, error) {
	res := l.store.Get(ctx, scope, l.maxAge)
	l.metrics.ObserveLookup(scope.Mode, res.Status.String())
	if res.Hit() {
		return res.Payload, true, nil
	}
	if res.Status == StatusCorrupted {
		// Drop the bad entry so the refill below starts clean.
		if err := l.store.Invalidate(ctx, scope); err != nil {
			l.logger.Warn("failed to drop corrupted cache entry", "scope", scope.Key(), "error", err)
		}
	}

	payload, err, _ := l.group.Do(scope.Key(), func() (any, error) {
		l.metrics.ObserveRecompute()
		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := l.store.Set(ctx, scope, data); err != nil {
			l.logger.Warn("cache refill failed", "scope", scope.Key(), "error", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return payload.(json.RawMessage), false, nil
}
