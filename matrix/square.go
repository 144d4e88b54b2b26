// SPDX-License-Identifier: MIT

// Package matrix - Square storage (row-major) & live-window maintenance.
//
// Purpose:
//   - Pre-allocate an order×order buffer once; never grow.
//   - Keep the explicit index formula i*order + j and fixed loop orders.
//   - Compact the live window [0,n) in place when an index is removed.
//
// Complexity quicksheet:
//   - NewSquare: O(order²) zero-init; At/Set/Row: O(1); ResetBand: O(n·d);
//     RemoveIndex: O(n²); Window/LoadWindow: O(n²).

package matrix

import "fmt"

const (
	ctxAt     = "At"
	ctxSet    = "Set"
	ctxRow    = "Row"
	ctxBand   = "ResetBand"
	ctxRemove = "RemoveIndex"
	ctxWindow = "Window"
	ctxLoad   = "LoadWindow"
)

// Cell is the set of element types a Square may hold.
type Cell interface {
	~float64 | ~uint64
}

// Square is a fixed-order row-major matrix.
//   - n is the order (rows == cols == n), fixed at construction.
//   - data is a flat buffer of length n*n (offset = i*n + j).
type Square[T Cell] struct {
	n    int
	data []T
}

// Dense is the float64 instantiation used for weights and probabilities.
type Dense = Square[float64]

// Counts is the uint64 instantiation used for exact path counters.
type Counts = Square[uint64]

// squareErrorf wraps a sentinel with a uniform method tag and coordinates.
func squareErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Square.%s(%d,%d): %w", method, row, col, err)
}

// NewSquare allocates an order×order zero matrix.
//
// Implementation:
//   - Stage 1: validate order > 0; else ErrInvalidDimensions.
//   - Stage 2: allocate a zero-filled flat buffer.
//
// Complexity:
//   - Time O(order²), Space O(order²).
func NewSquare[T Cell](order int) (*Square[T], error) {
	if order <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Square[T]{n: order, data: make([]T, order*order)}, nil
}

// NewDense allocates an order×order float64 matrix.
func NewDense(order int) (*Dense, error) { return NewSquare[float64](order) }

// NewCounts allocates an order×order uint64 counter matrix.
func NewCounts(order int) (*Counts, error) { return NewSquare[uint64](order) }

// Order returns the allocated order (capacity) of the matrix.
func (m *Square[T]) Order() int { return m.n }

// inRange reports whether 0 ≤ i < n.
func (m *Square[T]) inRange(i int) bool { return i >= 0 && i < m.n }

// At returns the element at (row, col).
// Errors: ErrOutOfRange (wrapped with coordinates).
func (m *Square[T]) At(row, col int) (T, error) {
	if !m.inRange(row) || !m.inRange(col) {
		var zero T
		return zero, squareErrorf(ctxAt, row, col, ErrOutOfRange)
	}

	return m.data[row*m.n+col], nil
}

// Set assigns v at (row, col).
// Errors: ErrOutOfRange (wrapped with coordinates).
func (m *Square[T]) Set(row, col int, v T) error {
	if !m.inRange(row) || !m.inRange(col) {
		return squareErrorf(ctxSet, row, col, ErrOutOfRange)
	}
	m.data[row*m.n+col] = v

	return nil
}

// Row returns the backing slice of row i (length == Order()).
// Writes through the slice mutate the matrix. It is the hot-loop accessor:
// callers index it directly instead of paying a bounds check per cell.
// Errors: ErrOutOfRange.
func (m *Square[T]) Row(i int) ([]T, error) {
	if !m.inRange(i) {
		return nil, squareErrorf(ctxRow, i, 0, ErrOutOfRange)
	}
	base := i * m.n

	return m.data[base : base+m.n : base+m.n], nil
}

// MustRow is Row for indices the caller has already validated.
// It panics on an out-of-range index (programmer error).
func (m *Square[T]) MustRow(i int) []T {
	r, err := m.Row(i)
	if err != nil {
		panic(err)
	}

	return r
}

// ResetBand zeroes every cell of the live window [0,hi)×[0,hi) whose row
// or column lies in [lo,hi). It is used after appending the indices lo..hi-1
// so the new block (new×new, new×old and old×new) starts empty.
//
// Errors: ErrOutOfRange when !(0 ≤ lo ≤ hi ≤ Order()).
// Complexity: O(hi·(hi-lo)).
func (m *Square[T]) ResetBand(lo, hi int) error {
	if lo < 0 || lo > hi || hi > m.n {
		return squareErrorf(ctxBand, lo, hi, ErrOutOfRange)
	}
	var i, j, base int
	var zero T
	for i = 0; i < hi; i++ {
		base = i * m.n
		if i >= lo {
			// new rows: clear the whole live prefix.
			for j = 0; j < hi; j++ {
				m.data[base+j] = zero
			}
			continue
		}
		// old rows: clear only the new columns.
		for j = lo; j < hi; j++ {
			m.data[base+j] = zero
		}
	}

	return nil
}

// RemoveIndex deletes row k and column k from the live window [0,n):
// the [k+1,n) block is shifted up and left by one, and the vacated row and
// column n-1 are zeroed.
//
// Errors: ErrOutOfRange when !(0 ≤ k < n ≤ Order()).
// Complexity: O(n²).
func (m *Square[T]) RemoveIndex(k, n int) error {
	if n > m.n || k < 0 || k >= n {
		return squareErrorf(ctxRemove, k, n, ErrOutOfRange)
	}
	var i, src, dst int
	var zero T
	for i = 0; i < n; i++ {
		if i == k {
			continue
		}
		src = i * m.n
		dst = src
		if i > k {
			dst = (i - 1) * m.n
		}
		// Rows above k keep their position; columns are compacted in both cases.
		copy(m.data[dst:dst+k], m.data[src:src+k])
		copy(m.data[dst+k:dst+n-1], m.data[src+k+1:src+n])
	}
	// Clear the vacated last row and column of the old window.
	last := (n - 1) * m.n
	for i = 0; i < n; i++ {
		m.data[last+i] = zero
		m.data[i*m.n+n-1] = zero
	}

	return nil
}

// ZeroDiagonal clears the first n diagonal cells.
func (m *Square[T]) ZeroDiagonal(n int) {
	if n > m.n {
		n = m.n
	}
	var zero T
	for i := 0; i < n; i++ {
		m.data[i*m.n+i] = zero
	}
}

// Zero clears the live window [0,n)×[0,n).
func (m *Square[T]) Zero(n int) {
	if n > m.n {
		n = m.n
	}
	var zero T
	for i := 0; i < n; i++ {
		row := m.data[i*m.n : i*m.n+n]
		for j := range row {
			row[j] = zero
		}
	}
}

// Window copies the live window [0,n)×[0,n) into a fresh [][]T.
// Errors: ErrOutOfRange when n is negative or exceeds Order().
func (m *Square[T]) Window(n int) ([][]T, error) {
	if n < 0 || n > m.n {
		return nil, squareErrorf(ctxWindow, n, n, ErrOutOfRange)
	}
	out := make([][]T, n)
	for i := 0; i < n; i++ {
		out[i] = make([]T, n)
		copy(out[i], m.data[i*m.n:i*m.n+n])
	}

	return out, nil
}

// LoadWindow writes rows back into the live window [0,len(rows)), the
// inverse of Window.
// Errors: ErrOutOfRange when len(rows) exceeds Order(); ErrInvalidDimensions
// when a row is not len(rows) long.
func (m *Square[T]) LoadWindow(rows [][]T) error {
	n := len(rows)
	if n > m.n {
		return squareErrorf(ctxLoad, n, n, ErrOutOfRange)
	}
	for i, row := range rows {
		if len(row) != n {
			return squareErrorf(ctxLoad, i, len(row), ErrInvalidDimensions)
		}
	}
	for i, row := range rows {
		copy(m.data[i*m.n:i*m.n+n], row)
	}

	return nil
}
