package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics counts freshness-cache lookups by outcome.
type CacheMetrics struct {
	lookupsTotal *prometheus.CounterVec
	computeTotal prometheus.Counter
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingpulse",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Freshness cache lookups by scope mode and outcome",
		}, []string{"mode", "outcome"}),
		computeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingpulse",
			Subsystem: "cache",
			Name:      "recomputes_total",
			Help:      "Payload recomputations triggered by cache misses",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.lookupsTotal, m.computeTotal)
	return m
}

func (m *CacheMetrics) ObserveLookup(mode, outcome string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(mode, outcome).Inc()
}

func (m *CacheMetrics) ObserveRecompute() {
	if m == nil {
		return
	}
	m.computeTotal.Inc()
}

// BroadcastMetrics tracks the booking-change fanout: cache invalidations,
// version bumps, queue appends, and push deliveries.
type BroadcastMetrics struct {
	stepsTotal  *prometheus.CounterVec
	pushLatency prometheus.Histogram
}

func NewBroadcastMetrics(reg prometheus.Registerer) *BroadcastMetrics {
	m := &BroadcastMetrics{
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingpulse",
			Subsystem: "broadcast",
			Name:      "steps_total",
			Help:      "Booking-change fanout steps by step name and status",
		}, []string{"step", "status"}),
		pushLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookingpulse",
			Subsystem: "broadcast",
			Name:      "push_latency_seconds",
			Help:      "Latency of push publisher deliveries",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.stepsTotal, m.pushLatency)
	return m
}

func (m *BroadcastMetrics) ObserveStep(step string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.stepsTotal.WithLabelValues(step, status).Inc()
}

func (m *BroadcastMetrics) ObservePushLatency(seconds float64) {
	if m == nil {
		return
	}
	m.pushLatency.Observe(seconds)
}

// PollMetrics tracks the lightweight version polling endpoint.
type PollMetrics struct {
	pollsTotal *prometheus.CounterVec
}

func NewPollMetrics(reg prometheus.Registerer) *PollMetrics {
	m := &PollMetrics{
		pollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingpulse",
			Subsystem: "versions",
			Name:      "polls_total",
			Help:      "Version polling requests by store reachability",
		}, []string{"store"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.pollsTotal)
	return m
}

func (m *PollMetrics) ObservePoll(storeReachable bool) {
	if m == nil {
		return
	}
	status := "reachable"
	if !storeReachable {
		status = "unreachable"
	}
	m.pollsTotal.WithLabelValues(status).Inc()
}
