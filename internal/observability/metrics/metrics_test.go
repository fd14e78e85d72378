package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range metric.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok {
			if want != lp.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBackendCall("create_appointment", "ok", 0.2)
	m.ObserveBackendCall("create_appointment", "conflict", 0.1)
	m.ObserveBackendCall("create_appointment", "ok", 0.3)
	m.ObserveTokenRefresh("failed")
	m.ObserveBooking("create", "conflict")
	m.ObserveConflict()
	m.ObserveRequest("/api/booking/{id}/confirm", "200")

	assert.Equal(t, 2.0, counterValue(t, reg, "pochita_backend_calls_total", map[string]string{"op": "create_appointment", "outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "pochita_backend_token_refresh_total", map[string]string{"outcome": "failed"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "pochita_booking_submissions_total", map[string]string{"mode": "create", "outcome": "conflict"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "pochita_booking_slot_conflicts_total", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "pochita_http_requests_total", map[string]string{"status": "200"}))
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBackendCall("op", "ok", 0.1)
	m.ObserveTokenRefresh("ok")
	m.ObserveBooking("create", "ok")
	m.ObserveConflict()
	m.ObserveRequest("/", "200")
}
