// Package push delivers booking events to already-connected clients through
// an HTTP publish endpoint (an nchan location or equivalent). Delivery is
// best effort: clients that miss a push fall back to version polling.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mybookings/bookingpulse/internal/events"
	"github.com/mybookings/bookingpulse/internal/observability/metrics"
	"github.com/mybookings/bookingpulse/pkg/logging"
)

// AdminChannel receives every booking event in addition to the per-entity
// channels.
const AdminChannel = "admin_all"

const defaultTimeout = 2 * time.Second

// Publisher POSTs event JSON to publishURL?channel=<name>. A 2xx response
// counts as delivered.
type Publisher struct {
	publishURL string
	client     *http.Client
	logger     *logging.Logger
	metrics    *metrics.BroadcastMetrics
}

// NewPublisher wires a publisher against publishURL. A non-positive timeout
// uses the default; the publish endpoint sits on localhost in the intended
// deployment, so the timeout is deliberately short.
func NewPublisher(publishURL string, timeout time.Duration, logger *logging.Logger, m *metrics.BroadcastMetrics) *Publisher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		publishURL: publishURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

// SpecialistChannel names the push channel for one specialist.
func SpecialistChannel(id int64) string {
	return fmt.Sprintf("specialist_%d", id)
}

// WorkpointChannel names the push channel for one workpoint.
func WorkpointChannel(id int64) string {
	return fmt.Sprintf("workpoint_%d", id)
}

// PublishBookingEvent pushes ev to the channels of the entities it names and
// to the admin channel. Returns false when any delivery failed; failures are
// logged, never escalated, the polling fallback covers them.
func (p *Publisher) PublishBookingEvent(ctx context.Context, ev events.BookingEventV1) bool {
	channels := []string{}
	if ev.Data.SpecialistID > 0 {
		channels = append(channels, SpecialistChannel(ev.Data.SpecialistID))
	}
	if ev.Data.WorkpointID > 0 {
		channels = append(channels, WorkpointChannel(ev.Data.WorkpointID))
	}
	channels = append(channels, AdminChannel)

	raw, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("push encode failed", "error", err)
		return false
	}

	ok := true
	for _, channel := range channels {
		if err := p.publishToChannel(ctx, channel, raw); err != nil {
			p.logger.Warn("push publish failed", "channel", channel, "error", err)
			ok = false
			continue
		}
		p.logger.Debug("push publish delivered", "channel", channel)
	}
	return ok
}

func (p *Publisher) publishToChannel(ctx context.Context, channel string, body []byte) error {
	start := time.Now()
	defer func() {
		p.metrics.ObservePushLatency(time.Since(start).Seconds())
	}()

	target := p.publishURL + "?channel=" + url.QueryEscape(channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push: post %s: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push: post %s: unexpected status %d", channel, resp.StatusCode)
	}
	return nil
}
