// Package metrics exposes engine-level Prometheus instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	analysisRuns = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seasonedge",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one full analysis run",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"symbol"},
	)

	moduleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seasonedge",
			Name:      "module_errors_total",
			Help:      "Soft per-module failures recorded as unavailable",
		},
		[]string{"module"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seasonedge",
			Name:      "cache_lookups_total",
			Help:      "Analysis cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	regOnce sync.Once
)

// Recorder implements the engine's metrics contract on Prometheus.
type Recorder struct{}

func NewRecorder() *Recorder {
	regOnce.Do(func() {
		prometheus.MustRegister(analysisRuns, moduleErrors, cacheLookups)
	})
	return &Recorder{}
}

func (r *Recorder) RecordRun(symbol string, seconds float64) {
	analysisRuns.WithLabelValues(symbol).Observe(seconds)
}

func (r *Recorder) RecordModuleError(module string) {
	moduleErrors.WithLabelValues(module).Inc()
}

func (r *Recorder) RecordCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheLookups.WithLabelValues(outcome).Inc()
}
