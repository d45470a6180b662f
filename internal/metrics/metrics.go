// Package metrics holds the Prometheus registry for the prediction pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles all pipeline metrics.
type Registry struct {
	prom *prometheus.Registry

	PipelineRuns   *prometheus.CounterVec
	PhaseDuration  *prometheus.HistogramVec
	FixturesSeen   prometheus.Counter
	Shortlisted    prometheus.Counter
	Analyzed       prometheus.Counter
	DroppedDives   prometheus.Counter
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	SourceFailures *prometheus.CounterVec
}

// NewRegistry creates and registers all metrics on a private registry.
func NewRegistry() *Registry {
	r := &Registry{
		prom: prometheus.NewRegistry(),
		PipelineRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aipredixt_pipeline_runs_total",
				Help: "Pipeline runs by mode and final status",
			},
			[]string{"mode", "status"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aipredixt_phase_duration_seconds",
				Help:    "Duration of each pipeline phase",
				Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"phase"},
		),
		FixturesSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aipredixt_fixtures_seen_total",
			Help: "Fixtures returned by the odds source",
		}),
		Shortlisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aipredixt_fixtures_shortlisted_total",
			Help: "Fixtures clearing the initial edge threshold",
		}),
		Analyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aipredixt_fixtures_analyzed_total",
			Help: "Fixtures with a completed deep dive",
		}),
		DroppedDives: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aipredixt_deep_dives_dropped_total",
			Help: "Deep dives dropped after a per-fixture failure",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aipredixt_result_cache_hits_total",
			Help: "Result cache hits within TTL",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aipredixt_result_cache_misses_total",
			Help: "Result cache misses or expired entries",
		}),
		SourceFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aipredixt_collaborator_failures_total",
				Help: "External collaborator call failures",
			},
			[]string{"collaborator"},
		),
	}

	r.prom.MustRegister(
		r.PipelineRuns, r.PhaseDuration, r.FixturesSeen, r.Shortlisted,
		r.Analyzed, r.DroppedDives, r.CacheHits, r.CacheMisses, r.SourceFailures,
	)
	return r
}

// Prometheus exposes the underlying registry for the /metrics handler.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.prom
}
