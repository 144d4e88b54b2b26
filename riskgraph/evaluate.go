// SPDX-License-Identifier: MIT

package riskgraph

import (
	"errors"
	"fmt"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/katalvlaran/deprisk/dfs"
)

// ResolveAndGateWeights recomputes r0 of every AND-gate g:
//
//	r0[g] = Π_{components c, C[g,c]>0} C[g,c]·r0[c] · Π_{gates g2≠g, C[g,g2]>0} C[g,g2]·r0[g2]
//
// where C is the effective closure. A gate with no component input gets 0.
// Gates are visited in topological order over the gate-to-gate sub-closure,
// so every factor r0[g2] is already final when it is read.
//
// Errors:
//   - ErrGateCycle when gates feed each other cyclically; no r0 is written.
//
// Complexity:
//   - Time O(G·n + G²) for G gates.
func (g *Graph[H]) ResolveAndGateWeights() error {
	gates := make([]int, 0, g.n)
	for s := 0; s < g.n; s++ {
		if g.kind[s] == AndGate {
			gates = append(gates, s)
		}
	}
	order, err := dfs.TopologicalOrder(len(gates), func(from, to int) bool {
		return g.closureAt(gates[to], gates[from]) > 0
	})
	if err != nil {
		var ce *dfs.CycleError
		if errors.As(err, &ce) {
			members := make([]H, len(ce.Cycle))
			for i, gi := range ce.Cycle {
				members[i] = g.handles[gates[gi]]
			}

			return fmt.Errorf("ResolveAndGateWeights: %v: %w", members, ErrGateCycle)
		}

		return fmt.Errorf("ResolveAndGateWeights: %w", err)
	}

	for _, gi := range order {
		gs := gates[gi]
		prod, connected := 1.0, false
		for c := 0; c < g.n; c++ {
			if g.kind[c] != Component {
				continue
			}
			if w := g.closureAt(gs, c); w > 0 {
				connected = true
				prod *= w * g.r0[c]
			}
		}
		if !connected {
			g.r0[gs] = 0
			continue
		}
		for _, g2 := range gates {
			if g2 == gs {
				continue
			}
			if w := g.closureAt(gs, g2); w > 0 {
				prod *= w * g.r0[g2]
			}
		}
		g.r0[gs] = prod
	}

	return nil
}

// ComputeRisks resolves AND-gates, then aggregates every slot with a
// noisy-OR over its own direct risk and everything that reaches it:
//
//	r[i] = 1 − Π_k (1 − W[i,k]·r0[k]),  W[i,i] = 1, W[i,k] = C[i,k].
//
// It returns the total risk of every Component keyed by handle. AND-gate
// slots are aggregated too but their r has no independent meaning and is
// left out of the map.
//
// Errors:
//   - ErrGateCycle; r and r0 keep their previous values.
//
// Complexity:
//   - Time O(n²).
func (g *Graph[H]) ComputeRisks() (map[H]float64, error) {
	start := time.Now()
	if err := g.ResolveAndGateWeights(); err != nil {
		return nil, err
	}

	var i, k int
	var prod, w float64
	for i = 0; i < g.n; i++ {
		prod = 1
		for k = 0; k < g.n; k++ {
			w = 1
			if k != i {
				w = g.closureAt(i, k)
			}
			prod *= 1 - w*g.r0[k]
		}
		g.r[i] = 1 - prod
	}
	g.stale = false
	g.metrics.observeCompute(time.Since(start))
	g.log.Debug("risks computed", zap.Int("vertices", g.n), zap.Duration("took", time.Since(start)))

	out := make(map[H]float64, g.n)
	for s := 0; s < g.n; s++ {
		if g.kind[s] == Component {
			out[g.handles[s]] = g.r[s]
		}
	}

	return out, nil
}

// RiskMap is ComputeRisks under its presentation-layer name.
func (g *Graph[H]) RiskMap() (map[H]float64, error) {
	return g.ComputeRisks()
}

// OrderedRisks runs ComputeRisks and returns component risks in slot order.
func (g *Graph[H]) OrderedRisks() (*orderedmap.OrderedMap[H, float64], error) {
	if _, err := g.ComputeRisks(); err != nil {
		return nil, err
	}
	om := orderedmap.New[H, float64](g.n)
	for s := 0; s < g.n; s++ {
		if g.kind[s] == Component {
			om.Set(g.handles[s], g.r[s])
		}
	}

	return om, nil
}

// RiskAbove runs ComputeRisks and returns, in slot order, the components
// whose total risk exceeds threshold (the risk-acceptance threshold).
func (g *Graph[H]) RiskAbove(threshold float64) ([]H, error) {
	if _, err := g.ComputeRisks(); err != nil {
		return nil, err
	}
	var out []H
	for s := 0; s < g.n; s++ {
		if g.kind[s] == Component && g.r[s] > threshold {
			out = append(out, g.handles[s])
		}
	}

	return out, nil
}

// GetVertexRisk returns r0 of h: the direct risk of a component, or the
// resolved risk of an AND-gate as of the last ComputeRisks.
func (g *Graph[H]) GetVertexRisk(h H) (float64, error) {
	s, err := g.lookup("GetVertexRisk", h)
	if err != nil {
		return 0, err
	}

	return g.r0[s], nil
}

// GetTotalRisk returns r of h from the last ComputeRisks. The value is stale
// if any mutation happened since (see Stale). For AND-gates it is not a
// meaningful quantity.
func (g *Graph[H]) GetTotalRisk(h H) (float64, error) {
	s, err := g.lookup("GetTotalRisk", h)
	if err != nil {
		return 0, err
	}

	return g.r[s], nil
}
