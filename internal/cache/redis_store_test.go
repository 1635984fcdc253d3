package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybookings/bookingpulse/pkg/logging"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, 0, logging.Default()), mr
}

func TestRedisStore_SetGetRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	scope := SpecialistScope(7)
	payload := json.RawMessage(`{"bookings":[{"id":7}]}`)

	require.NoError(t, store.Set(ctx, scope, payload))

	res := store.Get(ctx, scope, 30*time.Second)
	require.True(t, res.Hit())
	assert.JSONEq(t, string(payload), string(res.Payload))
}

func TestRedisStore_KeyNamespace(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Set(context.Background(), SupervisorScope(3), json.RawMessage(`1`)))
	assert.True(t, mr.Exists("bookings:cache:supervisor_wp_3"))
}

func TestRedisStore_ExpiredByTimestampIsMiss(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	scope := SpecialistScope(2)

	base := time.Now()
	store.now = func() time.Time { return base }
	require.NoError(t, store.Set(ctx, scope, json.RawMessage(`"stale"`)))

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	res := store.Get(ctx, scope, 30*time.Second)
	assert.Equal(t, StatusMiss, res.Status)
}

func TestRedisStore_InvalidateIsIdempotent(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	scope := SpecialistScope(9)

	require.NoError(t, store.Invalidate(ctx, scope))
	require.NoError(t, store.Set(ctx, scope, json.RawMessage(`1`)))
	require.NoError(t, store.Invalidate(ctx, scope))
	require.NoError(t, store.Invalidate(ctx, scope))

	assert.Equal(t, StatusMiss, store.Get(ctx, scope, time.Hour).Status)
}

func TestRedisStore_CorruptedValueFailsOpen(t *testing.T) {
	store, mr := newTestRedisStore(t)
	scope := SpecialistScope(4)

	require.NoError(t, mr.Set("bookings:cache:"+scope.Key(), "][not-json"))

	res := store.Get(context.Background(), scope, time.Hour)
	assert.Equal(t, StatusCorrupted, res.Status)
	assert.False(t, store.IsFresh(context.Background(), scope, time.Hour))
}

func TestRedisStore_UnreachableIsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisStore(client, 0, logging.Default())
	mr.Close()

	res := store.Get(context.Background(), SpecialistScope(1), time.Hour)
	assert.Equal(t, StatusMiss, res.Status)
	assert.Error(t, store.Set(context.Background(), SpecialistScope(1), json.RawMessage(`1`)))
}
