// SPDX-License-Identifier: MIT

// Package matrix provides fixed-order square storage for dense graph state.
//
// The package offers:
//
//   - Square[T], a row-major n×n buffer allocated once at construction and
//     never grown. The order is the capacity; callers track how many leading
//     rows/columns are live.
//   - Dense (Square[float64]) for weights and accumulated probabilities.
//   - Counts (Square[uint64]) for exact integer counters kept beside a Dense.
//   - Live-window maintenance: ResetBand zeroes the rows/columns of freshly
//     appended indices, RemoveIndex compacts the window after a deletion.
//
// Matrices are best for small graphs where O(V²) memory is acceptable and
// every index is dense. Public At/Set validate bounds and return
// ErrOutOfRange; Row exposes a row slice for hot loops.
package matrix
