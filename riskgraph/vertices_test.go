// SPDX-License-Identifier: MIT

package riskgraph_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/deprisk/riskgraph"
)

func TestAddComponent_DefaultsAndDuplicates(t *testing.T) {
	g := riskgraph.New[string]()
	require.NoError(t, g.AddComponent("a"))
	require.NoError(t, g.AddComponent("b", riskgraph.WithRisk(0.7)))

	r, err := g.GetVertexRisk("a")
	require.NoError(t, err)
	assert.Equal(t, riskgraph.DefaultRisk, r)
	r, err = g.GetVertexRisk("b")
	require.NoError(t, err)
	assert.Equal(t, 0.7, r)

	assert.ErrorIs(t, g.AddComponent("a"), riskgraph.ErrDuplicateHandle)
	assert.ErrorIs(t, g.AddAndGate("b"), riskgraph.ErrDuplicateHandle)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"a", "b"}, g.Handles())
}

func TestAddComponent_InvalidRisk(t *testing.T) {
	g := riskgraph.New[string]()
	for _, r := range []float64{-0.1, 1.5, math.NaN()} {
		assert.ErrorIs(t, g.AddComponent("x", riskgraph.WithRisk(r)), riskgraph.ErrInvalidRisk)
	}
	assert.Zero(t, g.Len())
	assert.False(t, g.Has("x"))
}

func TestAddAndGate_Kind(t *testing.T) {
	g := riskgraph.New[int]()
	require.NoError(t, g.AddComponent(1))
	require.NoError(t, g.AddAndGate(2))

	k, err := g.Kind(2)
	require.NoError(t, err)
	assert.Equal(t, riskgraph.AndGate, k)
	k, err = g.Kind(1)
	require.NoError(t, err)
	assert.Equal(t, riskgraph.Component, k)

	r, err := g.GetVertexRisk(2)
	require.NoError(t, err)
	assert.Zero(t, r)

	_, err = g.Kind(3)
	assert.ErrorIs(t, err, riskgraph.ErrInvalidHandle)
}

func TestCapacity_FailFast(t *testing.T) {
	g := riskgraph.New[string](riskgraph.WithCapacity(2))
	require.NoError(t, g.AddComponent("a"))
	require.NoError(t, g.AddAndGate("b"))

	assert.ErrorIs(t, g.AddComponent("c"), riskgraph.ErrCapacityExceeded)
	assert.ErrorIs(t, g.AddAndGate("c"), riskgraph.ErrCapacityExceeded)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 2, g.Capacity())
	assert.False(t, g.Has("c"))
}

func TestAddComponents_BlockValidation(t *testing.T) {
	g := riskgraph.New[string](riskgraph.WithCapacity(4))
	require.NoError(t, g.AddComponents([]string{"a", "b"}, nil))

	// every failure leaves the graph untouched
	assert.ErrorIs(t, g.AddComponents([]string{"c"}, []float64{0.1, 0.2}), riskgraph.ErrLengthMismatch)
	assert.ErrorIs(t, g.AddComponents([]string{"c", "c"}, nil), riskgraph.ErrDuplicateHandle)
	assert.ErrorIs(t, g.AddComponents([]string{"c", "a"}, nil), riskgraph.ErrDuplicateHandle)
	assert.ErrorIs(t, g.AddComponents([]string{"c", "d", "e"}, nil), riskgraph.ErrCapacityExceeded)
	assert.ErrorIs(t, g.AddComponents([]string{"c", "d"}, []float64{0.1, 2}), riskgraph.ErrInvalidRisk)
	assert.Equal(t, []string{"a", "b"}, g.Handles())

	require.NoError(t, g.AddComponents([]string{"c", "d"}, []float64{0.1, 0.2}))
	r, err := g.GetVertexRisk("d")
	require.NoError(t, err)
	assert.Equal(t, 0.2, r)
	assert.ErrorIs(t, g.AddAndGates([]string{"e"}), riskgraph.ErrCapacityExceeded)
}

func TestUpdateVertexRisk(t *testing.T) {
	g := riskgraph.New[string]()
	components(t, g, 0.25, "a", "b")

	require.NoError(t, g.UpdateVertexRisk("a", 0.9))
	assert.ErrorIs(t, g.UpdateVertexRisk("a", 1.1), riskgraph.ErrInvalidRisk)
	assert.ErrorIs(t, g.UpdateVertexRisk("zz", 0.1), riskgraph.ErrInvalidHandle)

	r, err := g.GetVertexRisk("a")
	require.NoError(t, err)
	assert.Equal(t, 0.9, r)

	// bulk: one bad entry rejects the whole batch
	err = g.UpdateVertexRisks([]string{"a", "b"}, []float64{0.1, -1})
	assert.ErrorIs(t, err, riskgraph.ErrInvalidRisk)
	r, _ = g.GetVertexRisk("a")
	assert.Equal(t, 0.9, r)

	require.NoError(t, g.UpdateVertexRisks([]string{"a", "b"}, []float64{0.1, 0.2}))
	r, _ = g.GetVertexRisk("b")
	assert.Equal(t, 0.2, r)
	assert.ErrorIs(t, g.UpdateVertexRisks([]string{"a"}, nil), riskgraph.ErrLengthMismatch)
}

func TestDeleteVertex_Reindexing(t *testing.T) {
	g := riskgraph.New[string]()
	components(t, g, 0.25, "a", "b", "c", "d")
	edge(t, g, "a", "b", 0.5)
	edge(t, g, "c", "d", 1)
	edge(t, g, "d", "a", 0.5)

	require.NoError(t, g.DeleteVertex("b"))
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []string{"a", "c", "d"}, g.Handles())
	for want, h := range []string{"a", "c", "d"} {
		s, err := g.Slot(h)
		require.NoError(t, err)
		assert.Equal(t, want, s, h)
	}
	_, err := g.Slot("b")
	assert.ErrorIs(t, err, riskgraph.ErrInvalidHandle)

	// surviving closure rows/columns moved with their handles
	assert.Equal(t, 1.0, closure(t, g, "d", "c"))
	assert.InDelta(t, 0.5, closure(t, g, "a", "d"), tol)
	assert.InDelta(t, 0.5, closure(t, g, "a", "c"), tol)
	assert.Zero(t, closure(t, g, "c", "a"))

	// the freed slot is reused without leaking old state
	require.NoError(t, g.AddComponent("e", riskgraph.WithRisk(0.5)))
	s, err := g.Slot("e")
	require.NoError(t, err)
	assert.Equal(t, 3, s)
	for _, h := range []string{"a", "c", "d"} {
		assert.Zero(t, closure(t, g, "e", h))
		assert.Zero(t, closure(t, g, h, "e"))
	}
	assert.Equal(t, 1.0, closure(t, g, "d", "c"))

	assert.ErrorIs(t, g.DeleteVertex("b"), riskgraph.ErrInvalidHandle)
}

func TestDeleteVertex_RetractsIncidentPaths(t *testing.T) {
	g := riskgraph.New[string]()
	components(t, g, 0.25, "x", "m", "y")

	edge(t, g, "x", "m", 1)
	edge(t, g, "m", "y", 0.5)
	assert.InDelta(t, 0.5, closure(t, g, "y", "x"), tol)

	require.NoError(t, g.DeleteVertex("m"))
	assert.Zero(t, closure(t, g, "y", "x"))
	assert.Zero(t, closure(t, g, "x", "y"))
	assert.Empty(t, g.Edges())

	snap := g.Snapshot()
	assert.Equal(t, [][]uint64{{0, 0}, {0, 0}}, snap.Certain)
	assert.Equal(t, [][]float64{{0, 0}, {0, 0}}, snap.Closure)
}

func TestDeleteVertices_Sequential(t *testing.T) {
	g := riskgraph.New[string]()
	components(t, g, 0.25, "a", "b", "c", "d", "e")
	edge(t, g, "a", "e", 1)

	require.NoError(t, g.DeleteVertices([]string{"b", "d"}))
	assert.Equal(t, []string{"a", "c", "e"}, g.Handles())
	assert.Equal(t, 1.0, closure(t, g, "e", "a"))

	err := g.DeleteVertices([]string{"c", "nope", "a"})
	assert.ErrorIs(t, err, riskgraph.ErrInvalidHandle)
	assert.Equal(t, []string{"a", "e"}, g.Handles())
}
