package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for dataset loading.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	CatalogSize     prometheus.Gauge
	SkippedRows     prometheus.Counter
	LastLoad        prometheus.Gauge
	RetriesTotal    prometheus.Counter
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
// Other components may register their collectors on the same Registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_load_requests_total",
			Help: "Dataset fetch attempts by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_load_request_duration_seconds",
			Help:    "Latency of dataset fetch attempts.",
			Buckets: prometheus.DefBuckets,
		},
	)
	catalogSize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products in the most recently loaded catalog.",
		},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_load_skipped_rows_total",
			Help: "Blank dataset rows skipped while parsing.",
		},
	)
	lastLoad := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_last_load_timestamp_seconds",
			Help: "Unix time of the last successful catalog load.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_load_retries_total",
			Help: "Retry attempts scheduled after a failed fetch.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_load_errors_total",
			Help: "Dataset load errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, catalogSize, skipped, lastLoad, retries, errorsTotal)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		CatalogSize:     catalogSize,
		SkippedRows:     skipped,
		LastLoad:        lastLoad,
		RetriesTotal:    retries,
		ErrorsTotal:     errorsTotal,
	}
}

// IncRequest increments the requests counter for an outcome label.
func (m *Metrics) IncRequest(outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records a fetch duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// ObserveCatalog records a successful load: the catalog size replaces the
// previous one, skipped rows accumulate.
func (m *Metrics) ObserveCatalog(products, skipped int) {
	if m == nil {
		return
	}
	m.CatalogSize.Set(float64(products))
	m.SkippedRows.Add(float64(skipped))
	m.LastLoad.SetToCurrentTime()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
