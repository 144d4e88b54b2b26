// Package dfs implements depth-first ordering over a dense index space.
//
// What:
//
//   - TopologicalOrder: computes a linear ordering of the indices 0..n-1 such
//     that for every dependency u→v reported by the caller, u appears before v.
//     Dependencies are supplied as a predicate instead of an adjacency
//     structure, so callers backed by a dense matrix need no conversion.
//   - Cycles are reported as *CycleError, which unwraps to ErrCycleDetected and
//     carries the offending cycle in visiting order.
//
// Why:
//   - Determine safe evaluation orders for values that depend on each other
//     (e.g. conjunction gates whose inputs are other gates).
//
// Key Types & Constants:
//
//   - White, Gray, Black: visitation markers.
//   - CycleError: cycle members, wraps ErrCycleDetected.
//
// Determinism:
//
//   - Roots are visited in ascending index order and dependencies are probed in
//     ascending index order, so the result is a pure function of (n, dep).
//
// Complexity:
//
//   - TopologicalOrder: Time O(n²) predicate calls, Memory O(n).
package dfs
