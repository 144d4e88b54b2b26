// SPDX-License-Identifier: MIT

// Package riskgraph maintains, incrementally, the probability that a failure
// anywhere upstream causes each part of a small dependency graph to fail.
//
// What:
//
//   - Graph[H] maps caller-owned handles (any comparable type) onto dense
//     slots 0..n-1 of a fixed-capacity store, and keeps per slot the direct
//     risk r0, the node kind and the last aggregated risk r.
//   - Edges source→target carry a propagation probability in (0,1]. The
//     closure of all paths is kept as two parallel matrices indexed
//     [target, source]: the hazard Σ −ln(1−p) of paths of probability below
//     1, and a counter of distinct probability-one paths. A cell's effective
//     value is 1 while its counter is positive, else 1 − exp(−hazard).
//     Hazards add on OR and subtract on retraction, so deleting an edge
//     undoes its addition exactly.
//   - Two such closures exist: one over every path (read for AND-gate
//     sources) and one over paths that never pass through an AND-gate
//     (read for components).
//   - Mutations (AddEdge, UpdateEdge, DeleteEdge, DeleteVertex …) update the
//     closure in O(n²) without recomputing it.
//   - ComputeRisks resolves AND-gates in dependency order and aggregates
//     every slot with a noisy-OR: r[i] = 1 − Π_k (1 − W[i,k]·r0[k]).
//
// Node kinds:
//
//   - Component: an ordinary part; its direct risk OR-combines with all
//     propagated upstream risk.
//   - AndGate: a conjunction used to model redundancy; its resolved risk is
//     the product of its inputs' contributions. A path may only pass through
//     an AND-gate as an intermediate hop when it starts at an AND-gate.
//
// Concurrency:
//
//   - Graph is NOT safe for concurrent use. It performs no locking; callers
//     that share one Graph between goroutines MUST serialise every call.
//
// Errors:
//
//	ErrInvalidHandle          - handle is not mapped to a live slot.
//	ErrDuplicateHandle        - handle is already live.
//	ErrCapacityExceeded       - vertex count would exceed the capacity.
//	ErrSelfLoopRejected       - edge endpoints are equal.
//	ErrArithmeticPrecondition - retraction from a non-finite closure cell.
//	ErrInvalidRisk            - risk outside [0,1] or NaN.
//	ErrInvalidWeight          - weight outside its admissible range or NaN.
//	ErrGateCycle              - AND-gates depend on each other cyclically.
//	ErrLengthMismatch         - bulk call with slices of different length.
//
// A rejected call leaves the Graph unchanged.
package riskgraph
