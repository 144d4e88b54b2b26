// SPDX-License-Identifier: MIT

package riskgraph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/deprisk/riskgraph"
)

// tol is the float tolerance used for closure and risk comparisons.
const tol = 1e-12

// closureOpts compares snapshots with approximate floats.
var closureOpts = cmp.Options{cmpopts.EquateApprox(0, tol)}

// components adds string-handled components with the given direct risks.
func components(t *testing.T, g *riskgraph.Graph[string], risk float64, hs ...string) {
	t.Helper()
	for _, h := range hs {
		require.NoError(t, g.AddComponent(h, riskgraph.WithRisk(risk)))
	}
}

// edge adds src→dst with weight w or fails the test.
func edge(t *testing.T, g *riskgraph.Graph[string], src, dst string, w float64) {
	t.Helper()
	require.NoError(t, g.AddEdge(src, dst, riskgraph.WithWeight(w)))
}

// closure reads EffectiveClosure(target, source) or fails the test.
func closure(t *testing.T, g *riskgraph.Graph[string], target, source string) float64 {
	t.Helper()
	v, err := g.EffectiveClosure(target, source)
	require.NoError(t, err)

	return v
}

// requireSameState fails when two snapshots differ beyond tol.
func requireSameState(t *testing.T, want, got riskgraph.Snapshot[string]) {
	t.Helper()
	if diff := cmp.Diff(want, got, closureOpts); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
}
