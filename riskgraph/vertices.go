// SPDX-License-Identifier: MIT

package riskgraph

import (
	"fmt"

	"go.uber.org/zap"
)

// AddComponent registers h as a Component with direct risk from WithRisk,
// or the graph's default risk (0.25).
//
// Errors:
//   - ErrDuplicateHandle, ErrCapacityExceeded, ErrInvalidRisk.
//
// Complexity:
//   - Time O(n).
func (g *Graph[H]) AddComponent(h H, opts ...VertexOption) error {
	cfg := vertexConfig{risk: g.opts.defaultRisk}
	for _, opt := range opts {
		opt(&cfg)
	}

	return g.addVertices("AddComponent", []H{h}, []float64{cfg.risk}, Component)
}

// AddComponents registers a contiguous block of Components in one pass.
// risks may be nil (default risk for all) or have len(handles) entries.
// The whole block is validated before anything is written.
//
// Errors:
//   - ErrLengthMismatch, ErrDuplicateHandle (against live handles or within
//     the block), ErrCapacityExceeded, ErrInvalidRisk.
//
// Complexity:
//   - Time O(n·d) for d new vertices.
func (g *Graph[H]) AddComponents(handles []H, risks []float64) error {
	if risks == nil {
		risks = make([]float64, len(handles))
		for i := range risks {
			risks[i] = g.opts.defaultRisk
		}
	}
	if len(risks) != len(handles) {
		return fmt.Errorf("AddComponents: %d handles, %d risks: %w", len(handles), len(risks), ErrLengthMismatch)
	}

	return g.addVertices("AddComponents", handles, risks, Component)
}

// AddAndGate registers h as an AND-gate. Its r0 starts at 0 and is
// recomputed by every ComputeRisks.
//
// Errors:
//   - ErrDuplicateHandle, ErrCapacityExceeded.
func (g *Graph[H]) AddAndGate(h H) error {
	return g.addVertices("AddAndGate", []H{h}, []float64{0}, AndGate)
}

// AddAndGates registers a contiguous block of AND-gates in one pass.
func (g *Graph[H]) AddAndGates(handles []H) error {
	return g.addVertices("AddAndGates", handles, make([]float64, len(handles)), AndGate)
}

// addVertices validates and appends a block of vertices of one kind.
//
// Implementation:
//   - Stage 1: validate capacity, risks and handle uniqueness.
//   - Stage 2: map handles to slots n..n+d-1, set r0/kind/r.
//   - Stage 3: zero the new rows/columns of A and of both closures.
func (g *Graph[H]) addVertices(op string, handles []H, risks []float64, kind NodeKind) (err error) {
	defer func() { g.metrics.observeMutation(opAddVertex, err) }()

	d := len(handles)
	if g.n+d > g.opts.capacity {
		return fmt.Errorf("%s: %d + %d > %d: %w", op, g.n, d, g.opts.capacity, ErrCapacityExceeded)
	}
	seen := make(map[H]struct{}, d)
	for i, h := range handles {
		if !validRisk(risks[i]) {
			return fmt.Errorf("%s(%v, %g): %w", op, h, risks[i], ErrInvalidRisk)
		}
		if _, ok := g.slot[h]; ok {
			return fmt.Errorf("%s(%v): %w", op, h, ErrDuplicateHandle)
		}
		if _, ok := seen[h]; ok {
			return fmt.Errorf("%s(%v): repeated in block: %w", op, h, ErrDuplicateHandle)
		}
		seen[h] = struct{}{}
	}

	lo, hi := g.n, g.n+d
	for i, h := range handles {
		s := lo + i
		g.slot[h] = s
		g.handles[s] = h
		g.kind[s] = kind
		g.r0[s] = risks[i]
		g.r[s] = 0
	}
	// Bounds were checked against capacity above.
	_ = g.adj.ResetBand(lo, hi)
	g.open.resetBand(lo, hi)
	g.plain.resetBand(lo, hi)
	g.n = hi
	g.stale = true
	g.metrics.setVertices(g.n)

	g.log.Debug("vertices added",
		zap.String("op", op),
		zap.Stringer("kind", kind),
		zap.Int("count", d),
		zap.Int("vertices", g.n))

	return nil
}

// UpdateVertexRisk overwrites the direct risk r0 of h. It is legal for both
// kinds but only meaningful for components: an AND-gate's r0 is overwritten
// by every ComputeRisks.
//
// Errors:
//   - ErrInvalidHandle, ErrInvalidRisk.
func (g *Graph[H]) UpdateVertexRisk(h H, risk float64) (err error) {
	defer func() { g.metrics.observeMutation(opUpdateRisk, err) }()

	s, err := g.lookup("UpdateVertexRisk", h)
	if err != nil {
		return err
	}
	if !validRisk(risk) {
		return fmt.Errorf("UpdateVertexRisk(%v, %g): %w", h, risk, ErrInvalidRisk)
	}
	g.r0[s] = risk
	g.stale = true

	return nil
}

// UpdateVertexRisks overwrites several direct risks. All pairs are validated
// before any is written.
func (g *Graph[H]) UpdateVertexRisks(handles []H, risks []float64) (err error) {
	defer func() { g.metrics.observeMutation(opUpdateRisk, err) }()

	if len(handles) != len(risks) {
		return fmt.Errorf("UpdateVertexRisks: %d handles, %d risks: %w", len(handles), len(risks), ErrLengthMismatch)
	}
	slots := make([]int, len(handles))
	for i, h := range handles {
		if slots[i], err = g.lookup("UpdateVertexRisks", h); err != nil {
			return err
		}
		if !validRisk(risks[i]) {
			return fmt.Errorf("UpdateVertexRisks(%v, %g): %w", h, risks[i], ErrInvalidRisk)
		}
	}
	for i, s := range slots {
		g.r0[s] = risks[i]
	}
	g.stale = true

	return nil
}

// DeleteVertex removes h and every incident edge.
//
// Implementation:
//   - Stage 1: retract every incident edge (both directions) while the
//     vertex's row and column are still live. If a retraction fails, the
//     edges and closures saved before Stage 1 are restored.
//   - Stage 2: unmap h; every handle mapped above its slot moves down by one.
//   - Stage 3: compact r0, kind, r, A and both closures by shifting the
//     [slot+1, n) block into [slot, n-1).
//   - Stage 4: decrement n.
//
// Errors:
//   - ErrInvalidHandle, ErrArithmeticPrecondition. A rejected call changes
//     nothing.
//
// Complexity:
//   - Time O(deg·n² + n²), Space O(n²) for the saved state.
func (g *Graph[H]) DeleteVertex(h H) (err error) {
	defer func() { g.metrics.observeMutation(opDeleteVertex, err) }()

	k, err := g.lookup("DeleteVertex", h)
	if err != nil {
		return err
	}
	saved := g.save()
	for x := 0; x < g.n; x++ {
		if x == k {
			continue
		}
		if g.adj.MustRow(k)[x] > 0 { // x → k
			if err = g.setEdge(x, k, 0); err != nil {
				g.restore(saved)
				return fmt.Errorf("DeleteVertex(%v): %w", h, err)
			}
		}
		if g.adj.MustRow(x)[k] > 0 { // k → x
			if err = g.setEdge(k, x, 0); err != nil {
				g.restore(saved)
				return fmt.Errorf("DeleteVertex(%v): %w", h, err)
			}
		}
	}

	n := g.n
	delete(g.slot, h)
	for s := k + 1; s < n; s++ {
		g.slot[g.handles[s]] = s - 1
	}
	copy(g.handles[k:n-1], g.handles[k+1:n])
	copy(g.kind[k:n-1], g.kind[k+1:n])
	copy(g.r0[k:n-1], g.r0[k+1:n])
	copy(g.r[k:n-1], g.r[k+1:n])
	var zero H
	g.handles[n-1] = zero
	g.r0[n-1], g.r[n-1], g.kind[n-1] = 0, 0, Component

	// k < n ≤ capacity, so compaction cannot fail.
	_ = g.adj.RemoveIndex(k, n)
	g.open.removeIndex(k, n)
	g.plain.removeIndex(k, n)
	g.n--
	g.stale = true
	g.metrics.setVertices(g.n)

	g.log.Debug("vertex deleted", zap.Any("handle", h), zap.Int("slot", k), zap.Int("vertices", g.n))

	return nil
}

// savedState is a copy of everything an edge mutation writes.
type savedState struct {
	stale                  bool
	adj, openHaz, plainHaz [][]float64
	openOnes, plainOnes    [][]uint64
}

// save copies the live edge and closure windows.
func (g *Graph[H]) save() savedState {
	// n ≤ capacity always holds, so Window cannot fail.
	s := savedState{stale: g.stale}
	s.adj, _ = g.adj.Window(g.n)
	s.openHaz, _ = g.open.haz.Window(g.n)
	s.openOnes, _ = g.open.ones.Window(g.n)
	s.plainHaz, _ = g.plain.haz.Window(g.n)
	s.plainOnes, _ = g.plain.ones.Window(g.n)

	return s
}

// restore writes back a state taken by save at the same n.
func (g *Graph[H]) restore(s savedState) {
	_ = g.adj.LoadWindow(s.adj)
	_ = g.open.haz.LoadWindow(s.openHaz)
	_ = g.open.ones.LoadWindow(s.openOnes)
	_ = g.plain.haz.LoadWindow(s.plainHaz)
	_ = g.plain.ones.LoadWindow(s.plainOnes)
	g.stale = s.stale
}

// DeleteVertices deletes each handle in order and stops at the first error.
// Each deletion re-resolves its handle, so slot shifts between deletions are
// harmless. Complexity: O(k·n²) for k deletions.
func (g *Graph[H]) DeleteVertices(handles []H) error {
	for _, h := range handles {
		if err := g.DeleteVertex(h); err != nil {
			return err
		}
	}

	return nil
}
