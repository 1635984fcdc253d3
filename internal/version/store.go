// Package version tracks a monotonic counter per booking channel so clients
// can detect "something changed since I last looked" without fetching any
// booking data. Counters only ever grow; clients compare for inequality, not
// for exact deltas, so coalesced bumps are fine.
package version

import "context"

// Store is the shared counter store. It is an injected dependency with an
// explicit lifecycle; nothing in this package reaches for a global handle.
//
// Any error from Get or Increment means the store could not be reached or
// answered abnormally. Callers must not fold that into "version 0", since a
// polling client has to distinguish "nothing changed" from "cannot tell".
type Store interface {
	// Get returns the current counter for ch, 0 when the channel was never
	// incremented.
	Get(ctx context.Context, ch Channel) (int64, error)
	// Increment atomically adds 1 to ch's counter and returns the new value.
	// Concurrent increments never lose updates.
	Increment(ctx context.Context, ch Channel) (int64, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connection.
	Close() error
}
