package dfs

// Dependency reports whether index from must be ordered before index to.
// It is called only with from != to.
type Dependency func(from, to int) bool

// topoSorter encapsulates state for a topological traversal.
type topoSorter struct {
	n     int
	dep   Dependency
	state []int // visitation state: White, Gray, Black
	stack []int // current Gray path, for cycle reporting
	order []int // recorded post-order sequence
}

// TopologicalOrder computes a topological ordering of the indices 0..n-1
// under dep. If n is zero the result is empty.
// If the dependencies contain a cycle, a *CycleError is returned.
//
// Implementation:
//   - Stage 1: validate n.
//   - Stage 2: drive a DFS from every White index in ascending order; the
//     traversal follows dependents (to) of the current index.
//   - Stage 3: reverse the post-order.
//
// Complexity:
//   - Time O(n²) calls to dep, Memory O(n).
func TopologicalOrder(n int, dep Dependency) ([]int, error) {
	// 1. Validate input
	if n < 0 {
		return nil, ErrNegativeOrder
	}
	// 2. Initialize sorter state
	sorter := &topoSorter{
		n:     n,
		dep:   dep,
		state: make([]int, n), // all indices start as White (0)
		stack: make([]int, 0, n),
		order: make([]int, 0, n),
	}
	// 3. Drive DFS from every unvisited index
	for v := 0; v < n; v++ {
		if sorter.state[v] == White {
			if err := sorter.visit(v); err != nil {
				return nil, err
			}
		}
	}
	// 4. Reverse post-order to produce topological order
	for i, j := 0, len(sorter.order)-1; i < j; i, j = i+1, j-1 {
		sorter.order[i], sorter.order[j] = sorter.order[j], sorter.order[i]
	}

	return sorter.order, nil
}

// visit performs a DFS from id, marking states and detecting cycles.
func (t *topoSorter) visit(id int) error {
	// 1. Cycle detection: if already Gray, we found a back-edge
	if t.state[id] == Gray {
		return t.cycleFrom(id)
	}
	// 2. Already fully processed (Black)? then skip
	if t.state[id] == Black {
		return nil
	}
	// 3. Mark as in-progress (Gray)
	t.state[id] = Gray
	t.stack = append(t.stack, id)

	// 4. Explore each dependent in ascending order
	for to := 0; to < t.n; to++ {
		if to == id || !t.dep(id, to) {
			continue
		}
		if err := t.visit(to); err != nil {
			return err
		}
	}

	// 5. Mark as fully explored (Black) and record in post-order
	t.stack = t.stack[:len(t.stack)-1]
	t.state[id] = Black
	t.order = append(t.order, id)

	return nil
}

// cycleFrom extracts the Gray path suffix starting at id.
func (t *topoSorter) cycleFrom(id int) error {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i] == id {
			cycle := make([]int, len(t.stack)-i)
			copy(cycle, t.stack[i:])

			return &CycleError{Cycle: cycle}
		}
	}

	return &CycleError{Cycle: []int{id}}
}
