// SPDX-License-Identifier: MIT

package riskgraph

import (
	"math"

	"go.uber.org/zap"
)

// Defaults, single source of truth for zero-value behavior.
const (
	// DefaultCapacity is the fixed maximum number of live vertices.
	DefaultCapacity = 512

	// DefaultRisk is the direct risk given to components added without one.
	DefaultRisk = 0.25

	// DefaultWeight is the probability given to edges added without one.
	DefaultWeight = 1.0

	// DefaultEpsilon bounds the negative rounding error silently clamped to 0
	// during retraction; anything larger is reported as closure drift.
	DefaultEpsilon = 1e-9
)

const (
	panicCapacityInvalid = "riskgraph: WithCapacity: capacity must be > 0"
	panicRiskInvalid     = "riskgraph: WithDefaultRisk: risk must be within [0,1]"
	panicWeightInvalid   = "riskgraph: WithDefaultWeight: weight must be within (0,1]"
	panicEpsilonInvalid  = "riskgraph: WithEpsilon: eps must be finite, non-negative"
)

// Option mutates Options. Constructors panic only on nonsensical values
// (programmer error).
type Option func(*Options)

// Options stores the effective configuration of a Graph.
type Options struct {
	capacity      int
	defaultRisk   float64
	defaultWeight float64
	eps           float64
	logger        *zap.Logger
	metrics       *Metrics
}

// WithCapacity sets the fixed vertex capacity. Storage for capacity² cells is
// allocated once by New.
func WithCapacity(n int) Option {
	if n <= 0 {
		panic(panicCapacityInvalid)
	}

	return func(o *Options) { o.capacity = n }
}

// WithDefaultRisk sets the direct risk used by AddComponent without WithRisk.
func WithDefaultRisk(r float64) Option {
	if !validRisk(r) {
		panic(panicRiskInvalid)
	}

	return func(o *Options) { o.defaultRisk = r }
}

// WithDefaultWeight sets the weight used by AddEdge without WithWeight.
func WithDefaultWeight(w float64) Option {
	if !validAddWeight(w) {
		panic(panicWeightInvalid)
	}

	return func(o *Options) { o.defaultWeight = w }
}

// WithEpsilon sets the retraction rounding tolerance.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithLogger installs a zap logger. A nil logger keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics installs Prometheus collectors created by NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.metrics = m }
}

// gatherOptions applies opts over the documented defaults.
func gatherOptions(opts ...Option) Options {
	o := Options{
		capacity:      DefaultCapacity,
		defaultRisk:   DefaultRisk,
		defaultWeight: DefaultWeight,
		eps:           DefaultEpsilon,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func validRisk(r float64) bool { return !math.IsNaN(r) && r >= 0 && r <= 1 }

func validAddWeight(w float64) bool { return !math.IsNaN(w) && w > 0 && w <= 1 }

func validUpdateWeight(w float64) bool { return !math.IsNaN(w) && w >= 0 && w <= 1 }
