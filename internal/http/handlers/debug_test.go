package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybookings/bookingpulse/internal/cache"
	"github.com/mybookings/bookingpulse/internal/events"
	"github.com/mybookings/bookingpulse/internal/version"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

func TestInspect_ReportsScopesVersionsAndEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logging.Default()
	cacheStore, err := cache.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)
	versions := version.NewRedisStore(client, 0)
	queue := events.NewQueuePublisher(client, time.Hour, 100, logger)
	handler := NewDebugHandler(cacheStore, versions, queue, 30*time.Second, logger)

	ctx := context.Background()
	require.NoError(t, cacheStore.Set(ctx, cache.SpecialistScope(7), json.RawMessage(`{"x":1}`)))
	_, err = versions.Increment(ctx, version.Specialist(7))
	require.NoError(t, err)
	require.NoError(t, queue.Publish(ctx, events.NewBookingEvent(events.TypeCreate, events.BookingChange{BookingID: "b-1", SpecialistID: 7})))

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/debug?specialist_id=7", nil)
	rec := httptest.NewRecorder()
	handler.Inspect(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DebugResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.RedisConnected)
	assert.EqualValues(t, 1, resp.Versions["specialist:7"])
	assert.Contains(t, resp.Versions, "global")

	var specialistScope *ScopeStatus
	for i := range resp.Scopes {
		if resp.Scopes[i].Scope == "specialist_spec_7" {
			specialistScope = &resp.Scopes[i]
		}
	}
	require.NotNil(t, specialistScope)
	assert.True(t, specialistScope.Cached)
	assert.True(t, specialistScope.Fresh)

	require.Len(t, resp.RecentEvents, 1)
	assert.Equal(t, "b-1", resp.RecentEvents[0].Data.BookingID)
}

func TestInspect_StoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logging.Default()
	cacheStore, err := cache.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)
	handler := NewDebugHandler(cacheStore, version.NewRedisStore(client, 0), nil, 30*time.Second, logger)
	mr.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/debug", nil)
	rec := httptest.NewRecorder()
	handler.Inspect(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DebugResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.RedisConnected)
	assert.Empty(t, resp.Versions)
	assert.Empty(t, resp.RecentEvents)
	// Cache state is still reported; the file store has no Redis dependency.
	assert.Len(t, resp.Scopes, 2)
}

func TestHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	handler := NewHealthHandler(version.NewRedisStore(client, 0))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.Check(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, true, resp["redis_connected"])
}
