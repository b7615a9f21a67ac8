package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAdmissionCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveAdmission("admitted")
	m.ObserveAdmission("admitted")
	m.ObserveAdmission("slot_conflict")

	if got := testutil.ToFloat64(m.admissionsTotal.WithLabelValues("admitted")); got != 2 {
		t.Fatalf("admitted count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.admissionsTotal.WithLabelValues("slot_conflict")); got != 1 {
		t.Fatalf("slot_conflict count = %v, want 1", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveAdmission("admitted")
	m.ObserveCancellation("free")
	m.ObserveAvailabilityLatency(0.1)
}
