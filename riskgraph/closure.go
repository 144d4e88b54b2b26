// SPDX-License-Identifier: MIT

package riskgraph

import (
	"fmt"
	"math"
	"math/bits"

	"go.uber.org/zap"

	"github.com/katalvlaran/deprisk/matrix"
)

// maxHazard caps the hazard of a single contribution. exp(-64) is far below
// the float64 resolution at 1, so a capped term still reads as probability 1,
// while keeping cell sums small enough that retraction stays exact.
const maxHazard = 64

// probability converts a hazard h = −ln(1−p) back to p.
func probability(h float64) float64 { return -math.Expm1(-h) }

// capped bounds a contribution's hazard by maxHazard.
func capped(h float64) float64 { return math.Min(h, maxHazard) }

// closure is one transitive-closure representation, indexed [target, source]:
//   - haz:  Σ −ln(1−p) over OR-combined contributions strictly below 1.
//     OR is addition and retraction is subtraction, with no singularity.
//   - ones: number of distinct probability-one paths.
type closure struct {
	haz  *matrix.Dense
	ones *matrix.Counts
}

func newClosure(capacity int) closure {
	return closure{
		haz:  mustSquare(matrix.NewDense(capacity)),
		ones: mustSquare(matrix.NewCounts(capacity)),
	}
}

// at is the effective probability of cell (i, j).
func (c *closure) at(i, j int) float64 {
	if c.ones.MustRow(i)[j] > 0 {
		return 1
	}

	return probability(c.haz.MustRow(i)[j])
}

// resetBand, removeIndex and zero mirror the matrix operations on both halves.
// Callers have validated the bounds.
func (c *closure) resetBand(lo, hi int) {
	_ = c.haz.ResetBand(lo, hi)
	_ = c.ones.ResetBand(lo, hi)
}

func (c *closure) removeIndex(k, n int) {
	_ = c.haz.RemoveIndex(k, n)
	_ = c.ones.RemoveIndex(k, n)
}

func (c *closure) zero(n int) {
	c.haz.Zero(n)
	c.ones.Zero(n)
}

// view returns the closure that holds the effective values of source j:
// paths from an AND-gate may pass through other gates, paths from a
// component may not.
func (g *Graph[H]) view(j int) *closure {
	if g.kind[j] == AndGate {
		return &g.open
	}

	return &g.plain
}

// closureAt is the effective closure probability for (target, source):
// 1 if any probability-one path is present, else the OR of the rest.
// All algorithms read the closure through this accessor.
func (g *Graph[H]) closureAt(target, source int) float64 {
	return g.view(source).at(target, source)
}

// EffectiveClosure returns the OR-combined probability that a failure of
// source propagates to target over positive-length paths.
// It is 0 when no such path exists.
func (g *Graph[H]) EffectiveClosure(target, source H) (float64, error) {
	t, err := g.lookup("EffectiveClosure", target)
	if err != nil {
		return 0, err
	}
	s, err := g.lookup("EffectiveClosure", source)
	if err != nil {
		return 0, err
	}
	if t == s {
		return 0, nil
	}

	return g.closureAt(t, s), nil
}

// cellUpdate is the planned next state of closure cell (i, j).
type cellUpdate struct {
	i, j int
	haz  float64
	ones uint64
}

// edgePlan collects every closure change of one edge mutation so it can be
// validated completely before anything is written.
type edgePlan struct {
	open, plain  []cellUpdate
	driftCertain int
	driftPartial int
}

// half is one side of a path j ⇝ a → b ⇝ i: the number of probability-one
// paths on that side and the hazard of the remaining ones.
type half struct {
	certain uint64
	haz     float64
}

func (h half) empty() bool { return h.certain == 0 && h.haz == 0 }

// pathHazard is the hazard of an edge of weight w followed (or preceded) by
// a bundle of hazard h.
func pathHazard(w, h float64) float64 {
	if w == 1 {
		return h
	}

	return -math.Log1p(w * math.Expm1(-h))
}

// joinHazard is the hazard of the bundle hp, then an edge of weight w, then
// the bundle hs. For w == 1 and bundles close to certain, it is evaluated
// around the smaller hazard so it never overflows.
func joinHazard(hp, w, hs float64) float64 {
	x := w * math.Expm1(-hp) * math.Expm1(-hs)
	if w == 1 && x > 0.5 {
		lo, hi := math.Min(hp, hs), math.Max(hp, hs)
		return lo - math.Log1p(math.Exp(-(hi-lo))-math.Exp(-hi))
	}

	return -math.Log1p(-x)
}

// contribution splits the paths pre → (edge of weight w) → suf into the
// number of probability-one paths and the hazard of all others. Every pair of
// a prefix and a suffix is a distinct path, so counts multiply and partial
// hazards are scaled by the multiplicity of the certain side they pair with.
// ok is false when the path count saturated.
func contribution(pre half, w float64, suf half) (certain uint64, haz float64, ok bool) {
	ok = true
	if pre.certain > 0 && suf.certain > 0 {
		hi, lo := bits.Mul64(pre.certain, suf.certain)
		if hi != 0 {
			lo, ok = math.MaxUint64, false
		}
		if w == 1 {
			certain = lo
		} else {
			haz += capped(float64(lo) * -math.Log1p(-w))
		}
	}
	if pre.certain > 0 && suf.haz > 0 {
		haz += capped(float64(pre.certain) * pathHazard(w, suf.haz))
	}
	if pre.haz > 0 && suf.certain > 0 {
		haz += capped(float64(suf.certain) * pathHazard(w, pre.haz))
	}
	if pre.haz > 0 && suf.haz > 0 {
		haz += capped(joinHazard(pre.haz, w, suf.haz))
	}

	return certain, haz, ok
}

// planEdge computes the closure changes caused by changing the weight of edge
// a→b from old to w (either may be 0), in both closures.
//
// Errors: ErrArithmeticPrecondition (nothing is written by planEdge itself).
// Complexity: O(n²).
func (g *Graph[H]) planEdge(a, b int, old, w float64) (*edgePlan, error) {
	plan := &g.plan
	plan.open, plan.plain = plan.open[:0], plan.plain[:0]
	plan.driftCertain, plan.driftPartial = 0, 0

	var err error
	if plan.open, err = g.planClosure(&g.open, false, plan, plan.open, a, b, old, w); err != nil {
		return nil, err
	}
	if plan.plain, err = g.planClosure(&g.plain, true, plan, plan.plain, a, b, old, w); err != nil {
		return nil, err
	}

	return plan, nil
}

// planClosure appends the changes of one closure to cells.
//
// Implementation:
//   - Stage 1: read the identity-augmented prefix column pre[j] = Ĉ[a,j]
//     (paths j ⇝ a) and suffix row suf[i] = Ĉ[i,b] (paths b ⇝ i).
//   - Stage 2: for every cell (i,j), i≠j, i≠a, j≠b, whose path j ⇝ a → b ⇝ i
//     is admitted, retract the contribution at weight old and combine the
//     one at weight w.
//
// When gateFree is set, an AND-gate is admitted only as an endpoint, and only
// component sources are kept; the gate columns of that closure stay zero.
//
// Cells in row a and column b are never written, so pre and suf stay valid
// for the whole pass and a later retraction reads the same values the
// addition did. That makes add-then-delete an exact inverse.
func (g *Graph[H]) planClosure(c *closure, gateFree bool, plan *edgePlan, cells []cellUpdate, a, b int, old, w float64) ([]cellUpdate, error) {
	if gateFree && g.kind[a] == AndGate {
		return cells, nil
	}
	n := g.n
	pre, suf := g.pre[:n], g.suf[:n]
	preHaz, preOne := c.haz.MustRow(a), c.ones.MustRow(a)
	for k := 0; k < n; k++ {
		pre[k] = half{certain: preOne[k], haz: preHaz[k]}
		suf[k] = half{certain: c.ones.MustRow(k)[b], haz: c.haz.MustRow(k)[b]}
	}
	pre[a], suf[b] = half{certain: 1}, half{certain: 1}

	var (
		i, j      int
		effective bool
		hazRow    []float64
		oneRow    []uint64
	)
	for i = 0; i < n; i++ {
		if i == a || suf[i].empty() {
			continue
		}
		if gateFree && i != b && g.kind[b] == AndGate {
			continue
		}
		hazRow, oneRow = c.haz.MustRow(i), c.ones.MustRow(i)
		for j = 0; j < n; j++ {
			if j == b || j == i || pre[j].empty() {
				continue
			}
			if gateFree && g.kind[j] == AndGate {
				continue
			}
			effective = gateFree || g.kind[j] == AndGate
			cell := cellUpdate{i: i, j: j, haz: hazRow[j], ones: oneRow[j]}
			if old > 0 {
				certain, haz, _ := contribution(pre[j], old, suf[i])
				if err := g.retract(plan, &cell, certain, haz, effective); err != nil {
					return nil, err
				}
			}
			if w > 0 {
				certain, haz, ok := contribution(pre[j], w, suf[i])
				if !ok {
					g.log.Warn("path count saturated", zap.Int("target", i), zap.Int("source", j))
				}
				combine(&cell, certain, haz)
			}
			cells = append(cells, cell)
		}
	}

	return cells, nil
}

// retract removes a contribution from cell. A contribution that is no longer
// present (counter below certain, or hazard below haz) saturates at zero; on
// a cell holding effective values it is counted as drift on the plan.
func (g *Graph[H]) retract(plan *edgePlan, cell *cellUpdate, certain uint64, haz float64, effective bool) error {
	if certain > 0 {
		if cell.ones < certain {
			if effective {
				plan.driftCertain++
			}
			cell.ones = 0
		} else {
			cell.ones -= certain
		}
	}
	if haz == 0 {
		return nil
	}
	v := cell.haz - haz
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("retract (%d,%d) by %g from %g: %w", cell.i, cell.j, haz, cell.haz, ErrArithmeticPrecondition)
	}
	if v < 0 {
		if v < -g.opts.eps && effective {
			plan.driftPartial++
		}
		v = 0
	}
	cell.haz = v

	return nil
}

// combine adds a contribution to cell; the counter saturates instead of
// wrapping.
func combine(cell *cellUpdate, certain uint64, haz float64) {
	if sum, carry := bits.Add64(cell.ones, certain, 0); carry != 0 {
		cell.ones = math.MaxUint64
	} else {
		cell.ones = sum
	}
	cell.haz += haz
}

// commit writes a validated plan and re-zeroes the diagonals.
func (g *Graph[H]) commit(plan *edgePlan) {
	write := func(c *closure, cells []cellUpdate) {
		for _, u := range cells {
			c.haz.MustRow(u.i)[u.j] = u.haz
			c.ones.MustRow(u.i)[u.j] = u.ones
		}
		c.haz.ZeroDiagonal(g.n)
		c.ones.ZeroDiagonal(g.n)
	}
	write(&g.open, plan.open)
	write(&g.plain, plan.plain)

	if plan.driftCertain+plan.driftPartial > 0 {
		g.log.Warn("closure drift while retracting",
			zap.Int("certain", plan.driftCertain),
			zap.Int("partial", plan.driftPartial))
		g.metrics.observeDrift(driftCertain, plan.driftCertain)
		g.metrics.observeDrift(driftPartial, plan.driftPartial)
	}
}
