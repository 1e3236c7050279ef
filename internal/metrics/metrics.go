// Package metrics exposes graph build statistics as Prometheus collectors.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bayleafwalker/depgraph/internal/graph"
)

// Recorder holds the build collectors on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	nodes         prometheus.Gauge
	edges         prometheus.Gauge
	packages      prometheus.Gauge
	declarations  prometheus.Counter
	candidates    prometheus.Counter
	skipped       *prometheus.CounterVec
	buildDuration prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		nodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "depgraph_nodes",
				Help: "Number of (package, version) nodes in the last built graph.",
			},
		),
		edges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "depgraph_edges",
				Help: "Number of dependency edges in the last built graph.",
			},
		),
		packages: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "depgraph_packages",
				Help: "Number of package records in the last loaded snapshot.",
			},
		),
		declarations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depgraph_declarations_total",
				Help: "Total number of dependency declarations examined.",
			},
		),
		candidates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "depgraph_candidates_total",
				Help: "Total number of candidate versions tested against a range.",
			},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "depgraph_skipped_total",
				Help: "Number of declarations or candidates skipped, by reason.",
			},
			[]string{"reason"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "depgraph_build_duration_seconds",
				Help:    "Time taken to build the dependency graph.",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
		),
	}
	r.registry.MustRegister(
		r.nodes,
		r.edges,
		r.packages,
		r.declarations,
		r.candidates,
		r.skipped,
		r.buildDuration,
	)
	return r
}

// Observe records the outcome of one build.
func (r *Recorder) Observe(g *graph.Graph, took time.Duration) {
	d := g.Diagnostics()
	r.nodes.Set(float64(g.Len()))
	r.edges.Set(float64(g.EdgeCount()))
	r.packages.Set(float64(d.Packages))
	r.declarations.Add(float64(d.Declarations))
	r.candidates.Add(float64(d.Candidates))
	for _, reason := range d.Reasons() {
		r.skipped.WithLabelValues(string(reason)).Add(float64(d.Skipped[reason]))
	}
	r.buildDuration.Observe(took.Seconds())
}

// Gatherer exposes the registry, e.g. for promhttp or tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the current values in the text exposition format, for
// the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
