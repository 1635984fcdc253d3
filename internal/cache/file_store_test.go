package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybookings/bookingpulse/pkg/logging"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), logging.Default())
	require.NoError(t, err)
	return store
}

func TestFileStore_SetGetRoundTrip(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	scope := SpecialistScope(1)
	payload := json.RawMessage(`{"bookings":[{"id":101,"client":"Ana"},{"id":102,"client":"Radu"}]}`)

	require.NoError(t, store.Set(ctx, scope, payload))

	res := store.Get(ctx, scope, 30*time.Second)
	require.True(t, res.Hit())
	assert.JSONEq(t, string(payload), string(res.Payload))
}

func TestFileStore_GetMissWhenNeverSet(t *testing.T) {
	store := newTestFileStore(t)

	res := store.Get(context.Background(), SpecialistScope(99), time.Minute)
	assert.Equal(t, StatusMiss, res.Status)
	assert.Nil(t, res.Payload)
}

func TestFileStore_FreshnessWindow(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	scope := SupervisorScope(3)

	base := time.Now()
	store.now = func() time.Time { return base }
	require.NoError(t, store.Set(ctx, scope, json.RawMessage(`"payload"`)))

	// Exactly at the max age boundary the entry is still fresh.
	store.now = func() time.Time { return base.Add(30 * time.Second) }
	assert.True(t, store.Get(ctx, scope, 30*time.Second).Hit())
	assert.True(t, store.IsFresh(ctx, scope, 30*time.Second))

	// One second past the boundary it is a miss but the entry still exists.
	store.now = func() time.Time { return base.Add(31 * time.Second) }
	res := store.Get(ctx, scope, 30*time.Second)
	assert.Equal(t, StatusMiss, res.Status)
	assert.False(t, store.IsFresh(ctx, scope, 30*time.Second))

	age, ok := store.Age(ctx, scope)
	require.True(t, ok)
	assert.Equal(t, 31*time.Second, age)
}

func TestFileStore_OverwriteReplacesPayload(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	scope := SpecialistScope(5)

	require.NoError(t, store.Set(ctx, scope, json.RawMessage(`{"v":1}`)))
	require.NoError(t, store.Set(ctx, scope, json.RawMessage(`{"v":2}`)))

	res := store.Get(ctx, scope, time.Hour)
	require.True(t, res.Hit())
	assert.JSONEq(t, `{"v":2}`, string(res.Payload))
}

func TestFileStore_InvalidateIsIdempotent(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	scope := SpecialistScope(8)

	require.NoError(t, store.Invalidate(ctx, scope))

	require.NoError(t, store.Set(ctx, scope, json.RawMessage(`1`)))
	require.NoError(t, store.Invalidate(ctx, scope))
	require.NoError(t, store.Invalidate(ctx, scope))

	assert.Equal(t, StatusMiss, store.Get(ctx, scope, time.Hour).Status)
	_, ok := store.Age(ctx, scope)
	assert.False(t, ok)
}

func TestFileStore_ScopeIsolation(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, SpecialistScope(1), json.RawMessage(`"one"`)))
	require.NoError(t, store.Set(ctx, SpecialistScope(2), json.RawMessage(`"two"`)))

	res1 := store.Get(ctx, SpecialistScope(1), time.Hour)
	res2 := store.Get(ctx, SpecialistScope(2), time.Hour)
	require.True(t, res1.Hit())
	require.True(t, res2.Hit())
	assert.Equal(t, `"one"`, string(res1.Payload))
	assert.Equal(t, `"two"`, string(res2.Payload))

	require.NoError(t, store.Invalidate(ctx, SpecialistScope(1)))
	assert.Equal(t, StatusMiss, store.Get(ctx, SpecialistScope(1), time.Hour).Status)
	assert.True(t, store.Get(ctx, SpecialistScope(2), time.Hour).Hit())
}

func TestFileStore_CorruptedEntryFailsOpen(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()
	scope := SpecialistScope(4)

	require.NoError(t, os.WriteFile(filepath.Join(store.dir, scope.Key()+".json"), []byte("{not json"), 0o644))

	res := store.Get(ctx, scope, time.Hour)
	assert.Equal(t, StatusCorrupted, res.Status)
	assert.False(t, res.Hit())

	_, ok := store.Age(ctx, scope)
	assert.False(t, ok)
	assert.False(t, store.IsFresh(ctx, scope, time.Hour))
}

func TestFileStore_MissingTimestampIsCorrupted(t *testing.T) {
	store := newTestFileStore(t)
	scope := SupervisorScope(12)

	require.NoError(t, os.WriteFile(filepath.Join(store.dir, scope.Key()+".json"), []byte(`{"data":{"x":1}}`), 0o644))

	res := store.Get(context.Background(), scope, time.Hour)
	assert.Equal(t, StatusCorrupted, res.Status)
}

func TestFileStore_OnDiskFormat(t *testing.T) {
	store := newTestFileStore(t)
	scope := SpecialistScope(6)

	base := time.Unix(1700000000, 0)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Set(context.Background(), scope, json.RawMessage(`{"slots":[]}`)))

	raw, err := os.ReadFile(filepath.Join(store.dir, "specialist_spec_6.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":1700000000,"data":{"slots":[]}}`, string(raw))
}
