// Package telemetry exposes Prometheus metrics for evaluations, link
// validation, and graph size.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all engine metrics behind one Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	CriticalPathCount  prometheus.Histogram

	// Mutation metrics
	LinkChecksTotal     *prometheus.CounterVec
	LinkRejectionsTotal *prometheus.CounterVec

	// Graph metrics
	GraphNodes   prometheus.Gauge
	GraphVersion prometheus.Gauge
}

// NewRegistry creates and registers all metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attacktree_evaluations_total",
			Help: "Total evaluations by mode and outcome status",
		}, []string{"mode", "status"}),
		EvaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attacktree_evaluation_duration_seconds",
			Help:    "Evaluation wall time by mode",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"mode"}),
		CriticalPathCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "attacktree_critical_paths",
			Help:    "Number of critical paths returned per evaluation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		LinkChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attacktree_link_checks_total",
			Help: "Total link validations by outcome",
		}, []string{"outcome"}),
		LinkRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attacktree_link_rejections_total",
			Help: "Link rejections by reason code",
		}, []string{"reason"}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "attacktree_graph_nodes",
			Help: "Nodes in the current graph snapshot",
		}),
		GraphVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "attacktree_graph_version",
			Help: "Mutation counter of the current graph",
		}),
	}

	reg.MustRegister(
		r.EvaluationsTotal,
		r.EvaluationDuration,
		r.CriticalPathCount,
		r.LinkChecksTotal,
		r.LinkRejectionsTotal,
		r.GraphNodes,
		r.GraphVersion,
	)
	return r
}

// RecordEvaluation records one evaluation outcome. Implements engine.Recorder.
func (r *Registry) RecordEvaluation(mode, status string, duration time.Duration, pathCount int) {
	r.EvaluationsTotal.WithLabelValues(mode, status).Inc()
	r.EvaluationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if status == "result" {
		r.CriticalPathCount.Observe(float64(pathCount))
	}
}

// RecordLinkCheck records an accepted link validation.
func (r *Registry) RecordLinkCheck() {
	r.LinkChecksTotal.WithLabelValues("accepted").Inc()
}

// RecordLinkRejection records a rejected link validation with its reason code.
func (r *Registry) RecordLinkRejection(reason string) {
	r.LinkChecksTotal.WithLabelValues("rejected").Inc()
	if reason == "" {
		reason = "UNKNOWN"
	}
	r.LinkRejectionsTotal.WithLabelValues(reason).Inc()
}

// SetGraphStats updates the graph gauges after a snapshot or mutation.
func (r *Registry) SetGraphStats(nodeCount int, version uint64) {
	r.GraphNodes.Set(float64(nodeCount))
	r.GraphVersion.Set(float64(version))
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
