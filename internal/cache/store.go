package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Status describes the outcome of a cache lookup.
type Status int

const (
	// StatusMiss means no usable entry exists: never written, invalidated,
	// expired, or unreadable storage. Callers recompute.
	StatusMiss Status = iota
	// StatusHit means a fresh entry was found and Payload is valid.
	StatusHit
	// StatusCorrupted means an entry exists but its contents could not be
	// decoded. Callers recompute, exactly as on a miss; the distinct status
	// exists so corruption is visible in logs and metrics and can never be
	// mistaken for a fresh payload.
	StatusCorrupted
)

func (s Status) String() string {
	switch s {
	case StatusHit:
		return "hit"
	case StatusCorrupted:
		return "corrupted"
	default:
		return "miss"
	}
}

// Result is the outcome of Store.Get. Payload and Age are only valid when
// Status is StatusHit.
type Result struct {
	Status  Status
	Payload json.RawMessage
	Age     time.Duration
}

// Hit reports whether the lookup produced a usable payload.
func (r Result) Hit() bool {
	return r.Status == StatusHit
}

// Store is the freshness cache: the last computed booking payload per scope,
// stamped with its computation time. Lookups are served only while the entry
// is younger than the caller's max age. Storage failures are downgraded to
// misses; no Get ever fails.
type Store interface {
	// Get returns the cached payload for scope if one exists and is no older
	// than maxAge.
	Get(ctx context.Context, scope Scope, maxAge time.Duration) Result
	// Set stores payload under scope stamped with the current time, replacing
	// any previous entry.
	Set(ctx context.Context, scope Scope, payload json.RawMessage) error
	// Invalidate removes the entry for scope. Removing an absent entry is a
	// no-op.
	Invalidate(ctx context.Context, scope Scope) error
	// Age returns how old the entry for scope is. The second return is false
	// when no decodable entry exists.
	Age(ctx context.Context, scope Scope) (time.Duration, bool)
	// IsFresh reports whether an entry exists and is no older than maxAge.
	IsFresh(ctx context.Context, scope Scope, maxAge time.Duration) bool
}

// envelope is the stored representation of one entry, shared by all backends:
// {"timestamp": <unix_seconds>, "data": <payload>}.
type envelope struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
