package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Extraction(OutcomeCacheHit)
	m.Extraction(OutcomeCacheHit)
	m.Extraction(OutcomeFailed)
	m.FieldMisses([]string{"sqft", "condo_fee", "sqft"})
	m.Photo(PhotoMissing)
	m.ObserveFetch(150 * time.Millisecond)

	if got := testutil.ToFloat64(m.extractions.WithLabelValues(OutcomeCacheHit)); got != 2 {
		t.Fatalf("expected 2 cache hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.fieldMisses.WithLabelValues("sqft")); got != 2 {
		t.Fatalf("expected 2 sqft misses, got %v", got)
	}
	if got := testutil.ToFloat64(m.photos.WithLabelValues(PhotoMissing)); got != 1 {
		t.Fatalf("expected 1 missing photo, got %v", got)
	}
	if n := testutil.CollectAndCount(m.fetchDuration); n != 1 {
		t.Fatalf("expected fetch histogram to be collected, got %d", n)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Extraction(OutcomeExtracted)
	m.FieldMisses([]string{"price"})
	m.Photo(PhotoOK)
	m.ObserveFetch(time.Second)
}
