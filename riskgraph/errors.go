// SPDX-License-Identifier: MIT

package riskgraph

import "errors"

// Sentinel errors for riskgraph operations. Callers match them with errors.Is;
// returned errors usually wrap them with the operation and handle involved.
var (
	// ErrInvalidHandle indicates a lookup of a handle not currently mapped.
	ErrInvalidHandle = errors.New("riskgraph: invalid handle")

	// ErrDuplicateHandle indicates an add with an already-live handle.
	ErrDuplicateHandle = errors.New("riskgraph: duplicate handle")

	// ErrCapacityExceeded indicates the vertex count would exceed the capacity.
	ErrCapacityExceeded = errors.New("riskgraph: capacity exceeded")

	// ErrSelfLoopRejected indicates an edge with equal endpoints.
	ErrSelfLoopRejected = errors.New("riskgraph: self-loop rejected")

	// ErrArithmeticPrecondition indicates a retraction whose result is not a
	// finite hazard; the closure cell was already corrupt.
	ErrArithmeticPrecondition = errors.New("riskgraph: arithmetic precondition violated")

	// ErrInvalidRisk indicates a direct risk outside [0,1] or NaN.
	ErrInvalidRisk = errors.New("riskgraph: risk must be within [0,1]")

	// ErrInvalidWeight indicates an edge weight outside its admissible range or NaN.
	ErrInvalidWeight = errors.New("riskgraph: invalid edge weight")

	// ErrGateCycle indicates AND-gates whose inputs depend on each other cyclically.
	ErrGateCycle = errors.New("riskgraph: AND-gate dependency cycle")

	// ErrLengthMismatch indicates bulk arguments of different lengths.
	ErrLengthMismatch = errors.New("riskgraph: argument length mismatch")
)
