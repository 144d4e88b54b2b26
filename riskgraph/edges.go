// SPDX-License-Identifier: MIT

package riskgraph

import (
	"fmt"

	"go.uber.org/zap"
)

// AddEdge inserts the edge src→dst, replacing any existing src→dst edge.
// Without WithWeight the graph's default weight (1) is used.
//
// Implementation:
//   - Stage 1: resolve both handles, reject self-loops and weights outside (0,1].
//   - Stage 2: plan the closure update for the new paths j ⇝ src → dst ⇝ i
//     (retracting the replaced edge's paths first, if any).
//   - Stage 3: write A[dst,src] and commit the plan.
//
// Errors:
//   - ErrInvalidHandle, ErrSelfLoopRejected, ErrInvalidWeight,
//     ErrArithmeticPrecondition. A rejected call changes nothing.
//
// Complexity:
//   - Time O(n²), Space O(n²) scratch (reused).
func (g *Graph[H]) AddEdge(src, dst H, opts ...EdgeOption) (err error) {
	defer func() { g.metrics.observeMutation(opAddEdge, err) }()

	cfg := edgeConfig{weight: g.opts.defaultWeight}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !validAddWeight(cfg.weight) {
		return fmt.Errorf("AddEdge(%v,%v,%g): %w", src, dst, cfg.weight, ErrInvalidWeight)
	}
	a, b, err := g.endpoints("AddEdge", src, dst)
	if err != nil {
		return err
	}

	return g.setEdge(a, b, cfg.weight)
}

// AddEdges applies AddEdge to each edge in order; a zero Weight selects the
// default weight. It stops at the first error; earlier edges stay applied.
func (g *Graph[H]) AddEdges(edges []Edge[H]) error {
	for _, e := range edges {
		var opts []EdgeOption
		if e.Weight != 0 {
			opts = append(opts, WithWeight(e.Weight))
		}
		if err := g.AddEdge(e.From, e.To, opts...); err != nil {
			return err
		}
	}

	return nil
}

// UpdateEdge sets the weight of src→dst to weight ∈ [0,1]; weight 0 removes
// the edge. It is a no-op when the stored weight already equals weight.
//
// The paths through the old edge are retracted (their hazard subtracted, or
// the probability-one counter decremented) and the paths through the new
// edge are composed exactly as AddEdge composes them.
//
// Errors:
//   - ErrInvalidHandle, ErrSelfLoopRejected, ErrInvalidWeight,
//     ErrArithmeticPrecondition. A rejected call changes nothing.
//
// Complexity:
//   - Time O(n²).
func (g *Graph[H]) UpdateEdge(src, dst H, weight float64) (err error) {
	defer func() { g.metrics.observeMutation(opUpdateEdge, err) }()

	if !validUpdateWeight(weight) {
		return fmt.Errorf("UpdateEdge(%v,%v,%g): %w", src, dst, weight, ErrInvalidWeight)
	}
	a, b, err := g.endpoints("UpdateEdge", src, dst)
	if err != nil {
		return err
	}

	return g.setEdge(a, b, weight)
}

// UpdateEdges applies UpdateEdge to each edge in order and stops at the
// first error.
func (g *Graph[H]) UpdateEdges(edges []Edge[H]) error {
	for _, e := range edges {
		if err := g.UpdateEdge(e.From, e.To, e.Weight); err != nil {
			return err
		}
	}

	return nil
}

// DeleteEdge removes src→dst; it is UpdateEdge(src, dst, 0).
// Deleting an absent edge is a no-op.
func (g *Graph[H]) DeleteEdge(src, dst H) error {
	return g.UpdateEdge(src, dst, 0)
}

// DeleteEdges removes each edge in order (weights are ignored) and stops at
// the first error.
func (g *Graph[H]) DeleteEdges(edges []Edge[H]) error {
	for _, e := range edges {
		if err := g.DeleteEdge(e.From, e.To); err != nil {
			return err
		}
	}

	return nil
}

// EdgeWeight returns the stored weight of src→dst (0 when absent).
func (g *Graph[H]) EdgeWeight(src, dst H) (float64, error) {
	a, err := g.lookup("EdgeWeight", src)
	if err != nil {
		return 0, err
	}
	b, err := g.lookup("EdgeWeight", dst)
	if err != nil {
		return 0, err
	}

	// both slots are live, so At cannot fail.
	w, _ := g.adj.At(b, a)

	return w, nil
}

// Edges lists every stored edge, ordered by source slot then target slot.
func (g *Graph[H]) Edges() []Edge[H] {
	var out []Edge[H]
	for a := 0; a < g.n; a++ {
		for b := 0; b < g.n; b++ {
			if w := g.adj.MustRow(b)[a]; w > 0 {
				out = append(out, Edge[H]{From: g.handles[a], To: g.handles[b], Weight: w})
			}
		}
	}

	return out
}

// Rebuild discards the incrementally maintained closure and replays every
// stored edge, in Edges() order, onto an empty closure. Use it to drop drift
// accumulated by retractions in an order different from the insertions.
// Complexity: O(E·n²).
func (g *Graph[H]) Rebuild() (err error) {
	defer func() { g.metrics.observeMutation(opRebuild, err) }()

	g.open.zero(g.n)
	g.plain.zero(g.n)
	for a := 0; a < g.n; a++ {
		for b := 0; b < g.n; b++ {
			w := g.adj.MustRow(b)[a]
			if w == 0 {
				continue
			}
			// Nothing is retracted when old == 0, so planning cannot fail.
			plan, err := g.planEdge(a, b, 0, w)
			if err != nil {
				return fmt.Errorf("Rebuild: %w", err)
			}
			g.commit(plan)
		}
	}
	g.stale = true
	g.log.Debug("closure rebuilt", zap.Int("vertices", g.n))

	return nil
}

// endpoints resolves an edge's handles and rejects self-loops.
func (g *Graph[H]) endpoints(op string, src, dst H) (int, int, error) {
	a, err := g.lookup(op, src)
	if err != nil {
		return 0, 0, err
	}
	b, err := g.lookup(op, dst)
	if err != nil {
		return 0, 0, err
	}
	if a == b {
		return 0, 0, fmt.Errorf("%s(%v,%v): %w", op, src, dst, ErrSelfLoopRejected)
	}

	return a, b, nil
}

// setEdge moves edge a→b from its stored weight to w, keeping the closure
// consistent. Validation is the caller's job.
func (g *Graph[H]) setEdge(a, b int, w float64) error {
	old := g.adj.MustRow(b)[a]
	if old == w {
		return nil
	}
	plan, err := g.planEdge(a, b, old, w)
	if err != nil {
		return fmt.Errorf("edge %v->%v: %w", g.handles[a], g.handles[b], err)
	}
	_ = g.adj.Set(b, a, w)
	g.commit(plan)
	g.stale = true

	g.log.Debug("edge updated",
		zap.Any("source", g.handles[a]),
		zap.Any("target", g.handles[b]),
		zap.Float64("old", old),
		zap.Float64("weight", w),
		zap.Int("cells", len(plan.open)+len(plan.plain)))

	return nil
}
