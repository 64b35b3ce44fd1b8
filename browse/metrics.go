package browse

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks pipeline runs and pagination for browsing sessions.
type Metrics struct {
	RunsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	ResultSize   prometheus.Gauge
	AdvanceTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg when it is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_pipeline_runs_total",
				Help: "Filter and sort evaluations by cache outcome.",
			},
			[]string{"cache"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_pipeline_run_duration_seconds",
				Help:    "Time spent filtering and sorting the catalog.",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		ResultSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_result_size",
				Help: "Products in the current filtered result.",
			},
		),
		AdvanceTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_page_advances_total",
				Help: "Load-more requests by outcome.",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.RunsTotal, m.RunDuration, m.ResultSize, m.AdvanceTotal)
	}
	return m
}

func (m *Metrics) observeRun(cacheHit bool, d time.Duration, size int) {
	if m == nil {
		return
	}
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	} else {
		m.RunDuration.Observe(d.Seconds())
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.ResultSize.Set(float64(size))
}

func (m *Metrics) observeAdvance(accepted bool) {
	if m == nil {
		return
	}
	outcome := "ignored"
	if accepted {
		outcome = "accepted"
	}
	m.AdvanceTotal.WithLabelValues(outcome).Inc()
}
