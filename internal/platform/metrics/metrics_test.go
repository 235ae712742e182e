package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestApplicationTransition_Counts(t *testing.T) {
	m := New()

	m.ApplicationTransition("", "Pending")
	m.ApplicationTransition("Pending", "Approved")
	m.ApplicationTransition("Pending", "Approved")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("none", "Pending")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("Pending", "Approved")))
}

func TestObserveRequest_StatusBuckets(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/api/pets/{id}", 404, 0.01)
	m.ObserveRequest("GET", "/api/pets/{id}", 410, 0.01)
	m.ObserveRequest("GET", "/api/pets/{id}", 200, 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/pets/{id}", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/pets/{id}", "2xx")))
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.InFlight(1)
		m.ObserveRequest("GET", "/", 200, 0)
		m.ApplicationTransition("Pending", "Rejected")
	})
}
