package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeCacheHit  = "cache_hit"
	OutcomeExtracted = "extracted"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"

	PhotoOK      = "ok"
	PhotoMissing = "missing"
)

// Metrics counts extraction outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	extractions   *prometheus.CounterVec
	fieldMisses   *prometheus.CounterVec
	photos        *prometheus.CounterVec
	fetchDuration prometheus.Histogram
}

// New registers the listing collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_extractions_total",
			Help: "Listing extraction requests by outcome.",
		}, []string{"outcome"}),
		fieldMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_field_misses_total",
			Help: "Fields no extraction strategy could recover.",
		}, []string{"field"}),
		photos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_photo_downloads_total",
			Help: "Primary photo resolution results.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "listing_fetch_duration_seconds",
			Help:    "Time spent fetching listing documents.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.extractions, m.fieldMisses, m.photos, m.fetchDuration)
	}
	return m
}

func (m *Metrics) Extraction(outcome string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FieldMisses(fields []string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.fieldMisses.WithLabelValues(f).Inc()
	}
}

func (m *Metrics) Photo(result string) {
	if m == nil {
		return
	}
	m.photos.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}
