package dfs

import (
	"errors"
	"fmt"
	"strings"
)

// VertexState represents the DFS visitation state of an index.
const (
	White = iota // White: the index has not been visited yet.
	Gray         // Gray: the index is on the recursion stack.
	Black        // Black: the index and all its dependents are finished.
)

var (
	// ErrCycleDetected indicates that a cycle was encountered during
	// TopologicalOrder.
	ErrCycleDetected = errors.New("dfs: cycle detected")

	// ErrNegativeOrder is returned when TopologicalOrder is asked to order a
	// negative number of indices.
	ErrNegativeOrder = errors.New("dfs: negative index count")
)

// CycleError reports the indices forming a cycle, in visiting order:
// Cycle[0]→Cycle[1]→…→Cycle[len-1]→Cycle[0].
type CycleError struct {
	Cycle []int
}

// Error implements error.
func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, v := range e.Cycle {
		parts[i] = fmt.Sprint(v)
	}

	return fmt.Sprintf("%v: %s", ErrCycleDetected, strings.Join(parts, " -> "))
}

// Unwrap lets errors.Is(err, ErrCycleDetected) match.
func (e *CycleError) Unwrap() error { return ErrCycleDetected }
