package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for backend calls and the
// booking wizard.
type BookingMetrics struct {
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	tokenRefreshes *prometheus.CounterVec
	bookings       *prometheus.CounterVec
	conflicts      prometheus.Counter
	httpRequests   *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pochita",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total calls to the clinic REST backend",
		}, []string{"op", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pochita",
			Subsystem: "backend",
			Name:      "call_latency_seconds",
			Help:      "Latency of clinic REST backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pochita",
			Subsystem: "backend",
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts",
		}, []string{"outcome"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pochita",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking wizard submissions",
		}, []string{"mode", "outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pochita",
			Subsystem: "booking",
			Name:      "slot_conflicts_total",
			Help:      "Submissions rejected because the slot was taken",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pochita",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served",
		}, []string{"route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.backendCalls, m.backendLatency, m.tokenRefreshes, m.bookings, m.conflicts, m.httpRequests)
	return m
}

func (m *BookingMetrics) ObserveBackendCall(op, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.backendCalls.WithLabelValues(op, outcome).Inc()
	m.backendLatency.WithLabelValues(op).Observe(seconds)
}

func (m *BookingMetrics) ObserveTokenRefresh(outcome string) {
	if m == nil {
		return
	}
	m.tokenRefreshes.WithLabelValues(outcome).Inc()
}

// ObserveBooking counts a wizard submission. mode is "create" or "reschedule".
func (m *BookingMetrics) ObserveBooking(mode, outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(mode, outcome).Inc()
}

func (m *BookingMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *BookingMetrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, status).Inc()
}
