package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCreatesAllInstruments(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("New returned nil")
	}

	if m.RequestsTotal == nil {
		t.Error("RequestsTotal not initialized")
	}
	if m.RequestSeconds == nil {
		t.Error("RequestSeconds not initialized")
	}
	if m.DropsTotal == nil {
		t.Error("DropsTotal not initialized")
	}
	if m.HistoryHits == nil {
		t.Error("HistoryHits not initialized")
	}
	if m.HistoryMisses == nil {
		t.Error("HistoryMisses not initialized")
	}
	if m.CallbacksTotal == nil {
		t.Error("CallbacksTotal not initialized")
	}
	if m.ActiveMonitors == nil {
		t.Error("ActiveMonitors not initialized")
	}
}

func TestCountersObserve(t *testing.T) {
	m := New()

	m.RequestsTotal.WithLabelValues("BOOK", OutcomeOK).Inc()
	m.RequestsTotal.WithLabelValues("BOOK", OutcomeOK).Inc()
	m.DropsTotal.WithLabelValues(DirectionReply).Inc()
	m.ActiveMonitors.Set(3)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("BOOK", OutcomeOK)); got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DropsTotal.WithLabelValues(DirectionReply)); got != 1 {
		t.Errorf("drops_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ActiveMonitors); got != 3 {
		t.Errorf("active_monitors = %v, want 3", got)
	}
}

func TestRegistriesAreIsolated(t *testing.T) {
	a := New()
	b := New()
	if a.Registry() == b.Registry() {
		t.Fatal("expected separate registries")
	}
}
