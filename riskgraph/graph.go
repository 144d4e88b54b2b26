// SPDX-License-Identifier: MIT

package riskgraph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/deprisk/matrix"
)

// Graph is the incremental dependency-risk engine.
//
// Storage is a structure of arrays keyed by dense slot, pre-allocated for
// Options.capacity vertices; slot i is live iff i < n. The handle↔slot
// bijection is owned by slot/handles.
//
// Matrices are indexed [target, source]:
//   - adj:   raw edge weights (A), 0 = no edge.
//   - open:  closure over every path; effective for AND-gate sources.
//   - plain: closure over paths without an AND-gate as an intermediate hop;
//     effective for component sources.
type Graph[H comparable] struct {
	opts    Options
	log     *zap.Logger
	metrics *Metrics

	n       int
	slot    map[H]int
	handles []H
	kind    []NodeKind
	r0      []float64 // direct (components) or resolved (gates) risk
	r       []float64 // aggregated risk of the last ComputeRisks
	stale   bool      // a mutation happened after the last ComputeRisks

	adj   *matrix.Dense
	open  closure
	plain closure

	// scratch reused by edge mutations
	pre, suf []half
	plan     edgePlan
}

// New allocates an empty Graph with the given options.
// By default: capacity 512, default risk 0.25, default weight 1, no logging,
// no metrics.
// Complexity: O(capacity²) memory, allocated once.
func New[H comparable](opts ...Option) *Graph[H] {
	o := gatherOptions(opts...)
	c := o.capacity

	return &Graph[H]{
		opts:    o,
		log:     o.logger,
		metrics: o.metrics,
		slot:    make(map[H]int, c),
		handles: make([]H, c),
		kind:    make([]NodeKind, c),
		r0:      make([]float64, c),
		r:       make([]float64, c),
		adj:     mustSquare(matrix.NewDense(c)),
		open:    newClosure(c),
		plain:   newClosure(c),
		pre:     make([]half, c),
		suf:     make([]half, c),
	}
}

// mustSquare unwraps a matrix constructor; capacity was validated by WithCapacity.
func mustSquare[T matrix.Cell](m *matrix.Square[T], err error) *matrix.Square[T] {
	if err != nil {
		panic(err)
	}

	return m
}

// Len returns the number of live vertices.
func (g *Graph[H]) Len() int { return g.n }

// Capacity returns the fixed maximum number of live vertices.
func (g *Graph[H]) Capacity() int { return g.adj.Order() }

// Has reports whether h is mapped to a live slot.
func (g *Graph[H]) Has(h H) bool {
	_, ok := g.slot[h]

	return ok
}

// Slot returns the dense slot currently mapped to h. Slots shift down when a
// lower slot is deleted.
func (g *Graph[H]) Slot(h H) (int, error) {
	return g.lookup("Slot", h)
}

// Handles returns the live handles in slot order.
func (g *Graph[H]) Handles() []H {
	out := make([]H, g.n)
	copy(out, g.handles[:g.n])

	return out
}

// Kind returns the node kind of h.
func (g *Graph[H]) Kind(h H) (NodeKind, error) {
	s, err := g.lookup("Kind", h)
	if err != nil {
		return 0, err
	}

	return g.kind[s], nil
}

// Stale reports whether a mutation happened after the last ComputeRisks,
// i.e. whether GetTotalRisk values are out of date.
func (g *Graph[H]) Stale() bool { return g.stale }

// lookup resolves h to its slot or returns ErrInvalidHandle wrapped with op.
func (g *Graph[H]) lookup(op string, h H) (int, error) {
	s, ok := g.slot[h]
	if !ok {
		return 0, fmt.Errorf("%s(%v): %w", op, h, ErrInvalidHandle)
	}

	return s, nil
}

// Snapshot copies the live state for inspection.
// Complexity: O(n²).
func (g *Graph[H]) Snapshot() Snapshot[H] {
	n := g.n
	s := Snapshot[H]{
		Handles: g.Handles(),
		Kinds:   append([]NodeKind(nil), g.kind[:n]...),
		Direct:  append([]float64(nil), g.r0[:n]...),
	}
	// n ≤ capacity always holds, so Window cannot fail.
	s.Adjacency, _ = g.adj.Window(n)
	s.Closure = make([][]float64, n)
	s.Certain = make([][]uint64, n)
	for i := 0; i < n; i++ {
		s.Closure[i] = make([]float64, n)
		s.Certain[i] = make([]uint64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			s.Closure[i][j] = g.closureAt(i, j)
			s.Certain[i][j], _ = g.view(j).ones.At(i, j)
		}
	}

	return s
}
