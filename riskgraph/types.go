// SPDX-License-Identifier: MIT

package riskgraph

import "fmt"

// NodeKind distinguishes ordinary components from conjunction gates.
type NodeKind uint8

const (
	// Component is an ordinary vertex whose direct risk OR-combines with
	// all propagated upstream risk.
	Component NodeKind = iota

	// AndGate is a conjunction vertex; its risk is the product of its
	// connected inputs' contributions.
	AndGate
)

const (
	kindComponent = "component"
	kindAndGate   = "and_gate"
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case Component:
		return kindComponent
	case AndGate:
		return kindAndGate
	default:
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
}

// MarshalText encodes the kind as its String form.
func (k NodeKind) MarshalText() ([]byte, error) {
	if k != Component && k != AndGate {
		return nil, fmt.Errorf("riskgraph: unknown node kind %d", uint8(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText decodes "component" or "and_gate".
func (k *NodeKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case kindComponent:
		*k = Component
	case kindAndGate:
		*k = AndGate
	default:
		return fmt.Errorf("riskgraph: unknown node kind %q", string(b))
	}

	return nil
}

// Edge is an ordered source→target pair with its propagation probability.
//
// In AddEdges a zero Weight selects the graph's default weight; in
// UpdateEdges a zero Weight deletes the edge.
type Edge[H comparable] struct {
	From   H       `json:"from"`
	To     H       `json:"to"`
	Weight float64 `json:"weight"`
}

// Snapshot is a copy of the live state, indexed by slot. Closure cells are
// [target][source]. It exists for inspection and tests; mutating it has no
// effect on the Graph.
type Snapshot[H comparable] struct {
	Handles   []H
	Kinds     []NodeKind
	Direct    []float64   // r0
	Adjacency [][]float64 // A
	Closure   [][]float64 // effective closure, as read by EffectiveClosure
	Certain   [][]uint64  // probability-one path counts behind Closure
}

// VertexOption configures a single AddComponent call.
type VertexOption func(*vertexConfig)

type vertexConfig struct {
	risk    float64
	riskSet bool
}

// WithRisk sets the direct risk of the component being added.
func WithRisk(r float64) VertexOption {
	return func(c *vertexConfig) {
		c.risk = r
		c.riskSet = true
	}
}

// EdgeOption configures a single AddEdge call.
type EdgeOption func(*edgeConfig)

type edgeConfig struct {
	weight    float64
	weightSet bool
}

// WithWeight sets the propagation probability of the edge being added.
func WithWeight(w float64) EdgeOption {
	return func(c *edgeConfig) {
		c.weight = w
		c.weightSet = true
	}
}
