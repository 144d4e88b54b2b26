// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All public accessors return these sentinels (optionally wrapped with
// call-site context via %w); tests match them with errors.Is.

package matrix

import "errors"

// Every message is prefixed with "matrix: ..." for consistency and to allow
// easy grepping across logs.
var (
	// ErrInvalidDimensions indicates that a requested order is non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row, column or live bound) is
	// outside the allocated order. Public indexers MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")
)
