// SPDX-License-Identifier: MIT

package riskgraph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels for deprisk_mutations_total.
const (
	opAddVertex    = "add_vertex"
	opUpdateRisk   = "update_risk"
	opDeleteVertex = "delete_vertex"
	opAddEdge      = "add_edge"
	opUpdateEdge   = "update_edge"
	opRebuild      = "rebuild"
)

// Drift labels for deprisk_closure_drift_total.
const (
	driftCertain = "certain"
	driftPartial = "partial"
)

// Metrics holds the Prometheus collectors of one or more Graphs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	compute   prometheus.Histogram
	drift     *prometheus.CounterVec
	vertices  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
// Errors: the first registration error (e.g. prometheus.AlreadyRegisteredError).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deprisk_mutations_total",
			Help: "Graph mutations by operation and result",
		}, []string{"op", "result"}),
		compute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "deprisk_compute_duration_seconds",
			Help:    "ComputeRisks duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}),
		drift: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deprisk_closure_drift_total",
			Help: "Retractions of contributions no longer present in the closure",
		}, []string{"kind"}),
		vertices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deprisk_vertices",
			Help: "Live vertices in the graph",
		}),
	}
	for _, c := range []prometheus.Collector{m.mutations, m.compute, m.drift, m.vertices} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observeMutation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) observeCompute(d time.Duration) {
	if m == nil {
		return
	}
	m.compute.Observe(d.Seconds())
}

func (m *Metrics) observeDrift(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.drift.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) setVertices(n int) {
	if m == nil {
		return
	}
	m.vertices.Set(float64(n))
}
