// Package metrics exposes run progress as Prometheus metrics. Each Metrics
// owns its registry so parallel app instances, such as tests, never collide.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/shotgrid/internal/model"
)

const namespace = "shotgrid"

// Metrics holds the collectors of one app instance.
type Metrics struct {
	registry *prometheus.Registry

	cases       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	components  prometheus.Gauge
	dataQuality prometheus.Counter
	matrixSize  prometheus.Gauge
}

// New creates the collectors on a fresh registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		cases: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cases_total",
			Help:      "Settled test cases by browser, outcome and failure kind.",
		}, []string{"browser", "outcome", "failure"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "case_duration_seconds",
			Help:      "Wall time of executed test cases.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"browser"}),
		components: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "manifest_components",
			Help:      "Entries in the last fetched component manifest.",
		}),
		dataQuality: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_data_quality_warnings_total",
			Help:      "Manifest entries missing a name or a path.",
		}),
		matrixSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matrix_cases",
			Help:      "Cases in the generated test matrix.",
		}),
	}
}

// ManifestFetched records the size and quality of a fetched manifest.
func (m *Metrics) ManifestFetched(components, issues int) {
	m.components.Set(float64(components))
	m.dataQuality.Add(float64(issues))
}

// MatrixBuilt records the number of generated cases.
func (m *Metrics) MatrixBuilt(cases int) {
	m.matrixSize.Set(float64(cases))
}

// Observe counts a settled case. Skipped cases have no duration sample.
func (m *Metrics) Observe(_ context.Context, r model.CaptureResult) {
	browser := r.Case.Browser.Name
	m.cases.WithLabelValues(browser, r.Outcome.Kind.String(), string(r.Outcome.Failure)).Inc()
	if r.Outcome.Kind != model.Skipped {
		m.duration.WithLabelValues(browser).Observe(r.Duration.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
