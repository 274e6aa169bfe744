package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry            *prometheus.Registry
	PagesFetchedTotal   *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	ListingsStoredTotal prometheus.Counter
	ErrorsTotal         *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pagesFetched := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Total listing pages fetched, by outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "HTTP fetch latency per listing page.",
			Buckets: prometheus.DefBuckets,
		},
	)
	listingsStored := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_listings_stored_total",
			Help: "Total listings persisted to the store.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total per-URL errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(pagesFetched, fetchDuration, listingsStored, errorsTotal)

	return &Metrics{
		Registry:            registry,
		PagesFetchedTotal:   pagesFetched,
		FetchDuration:       fetchDuration,
		ListingsStoredTotal: listingsStored,
		ErrorsTotal:         errorsTotal,
	}
}

// IncPage increments the fetched pages counter for an outcome label.
func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesFetchedTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetchDuration records one fetch latency sample.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncStored increments the stored listings counter.
func (m *Metrics) IncStored() {
	if m == nil {
		return
	}
	m.ListingsStoredTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
