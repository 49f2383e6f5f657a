package unit

import (
	"slices"
)

// Visitor folds a per-unit result over a traversal.
type Visitor[T any] interface {
	Init() T
	Visit(u *Unit, mode Mode) T
	Combine(acc, result T) T
	Cancel(acc T) bool
}

// VisitorFuncs adapts plain functions to Visitor. A nil CancelFn never cancels.
type VisitorFuncs[T any] struct {
	InitValue T
	VisitFn   func(u *Unit, mode Mode) T
	CombineFn func(acc, result T) T
	CancelFn  func(acc T) bool
}

// Init implements Visitor.
func (v VisitorFuncs[T]) Init() T { return v.InitValue }

// Visit implements Visitor.
func (v VisitorFuncs[T]) Visit(u *Unit, mode Mode) T { return v.VisitFn(u, mode) }

// Combine implements Visitor.
func (v VisitorFuncs[T]) Combine(acc, result T) T { return v.CombineFn(acc, result) }

// Cancel implements Visitor.
func (v VisitorFuncs[T]) Cancel(acc T) bool { return v.CancelFn != nil && v.CancelFn(acc) }

// Visit runs v over every unit reachable from start, each exactly once. Dependents come before
// their dependencies unless reverse is set. Inside a strongly connected component units are
// ordered along acyclic edges.
func Visit[T any](start *Unit, v Visitor[T], mode Mode, reverse bool) T {
	order, modes := visitOrder(start, mode)
	if reverse {
		slices.Reverse(order)
	}

	acc := v.Init()
	for _, u := range order {
		acc = v.Combine(acc, v.Visit(u, modes[u]))
		if v.Cancel(acc) {
			break
		}
	}
	return acc
}

// Order returns the units reachable from start in visit order.
func Order(start *Unit, reverse bool) []*Unit {
	order, _ := visitOrder(start, nil)
	if reverse {
		slices.Reverse(order)
	}
	return order
}

func visitOrder(start *Unit, mode Mode) ([]*Unit, map[*Unit]Mode) {
	modes := map[*Unit]Mode{start: mode}
	reachable := []*Unit{start}
	for i := 0; i < len(reachable); i++ {
		cur := reachable[i]
		next := requiredMode(modes[cur])
		for _, dep := range cur.Dependencies() {
			if _, seen := modes[dep]; !seen {
				modes[dep] = next
				reachable = append(reachable, dep)
			}
		}
	}

	comps := stronglyConnected(reachable)
	rank := componentRanks(comps)

	// Units of one rank that reach each other share a component.
	byRank := make(map[int][][]*Unit)
	maxRank := 0
	for i, comp := range comps {
		r := rank[i]
		byRank[r] = append(byRank[r], comp)
		maxRank = max(maxRank, r)
	}

	order := make([]*Unit, 0, len(reachable))
	for r := 0; r <= maxRank; r++ {
		group := byRank[r]
		slices.SortFunc(group, func(a, b []*Unit) int { return compareUnits(a[0], b[0]) })
		for _, comp := range group {
			order = append(order, acyclicOrder(comp)...)
		}
	}
	return order, modes
}

// stronglyConnected returns the strongly connected components of the combined edge relation in
// topological order, dependents first. Each component is sorted.
func stronglyConnected(units []*Unit) [][]*Unit {
	var (
		index   = make(map[*Unit]int, len(units))
		low     = make(map[*Unit]int, len(units))
		onStack = make(map[*Unit]bool, len(units))
		stack   []*Unit
		comps   [][]*Unit
		next    int
	)

	var strongConnect func(u *Unit)
	strongConnect = func(u *Unit) {
		index[u] = next
		low[u] = next
		next++
		stack = append(stack, u)
		onStack[u] = true

		for _, dep := range u.Dependencies() {
			if _, ok := index[dep]; !ok {
				strongConnect(dep)
				low[u] = min(low[u], low[dep])
			} else if onStack[dep] {
				low[u] = min(low[u], index[dep])
			}
		}

		if low[u] != index[u] {
			return
		}
		var comp []*Unit
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			comp = append(comp, top)
			if top == u {
				break
			}
		}
		slices.SortFunc(comp, compareUnits)
		comps = append(comps, comp)
	}

	for _, u := range units {
		if _, ok := index[u]; !ok {
			strongConnect(u)
		}
	}

	// Tarjan emits sinks first.
	slices.Reverse(comps)
	return comps
}

// componentRanks returns the length of the longest path from the first component to each
// component of the condensation. comps must be in topological order.
func componentRanks(comps [][]*Unit) []int {
	compOf := make(map[*Unit]int)
	for i, comp := range comps {
		for _, u := range comp {
			compOf[u] = i
		}
	}

	rank := make([]int, len(comps))
	for i, comp := range comps {
		for _, u := range comp {
			for _, dep := range u.Dependencies() {
				if j := compOf[dep]; j != i {
					rank[j] = max(rank[j], rank[i]+1)
				}
			}
		}
	}
	return rank
}

// acyclicOrder sorts a component along its acyclic edges, dependents first.
func acyclicOrder(comp []*Unit) []*Unit {
	if len(comp) == 1 {
		return comp
	}

	member := make(map[*Unit]bool, len(comp))
	for _, u := range comp {
		member[u] = true
	}
	indegree := make(map[*Unit]int, len(comp))
	for _, u := range comp {
		for _, dep := range u.ModuleDependencies() {
			if member[dep] {
				indegree[dep]++
			}
		}
	}

	var ready []*Unit
	for _, u := range comp {
		if indegree[u] == 0 {
			ready = append(ready, u)
		}
	}

	order := make([]*Unit, 0, len(comp))
	placed := make(map[*Unit]bool, len(comp))
	for len(ready) > 0 {
		slices.SortFunc(ready, compareUnits)
		u := ready[0]
		ready = ready[1:]
		order = append(order, u)
		placed[u] = true
		for _, dep := range u.ModuleDependencies() {
			if !member[dep] {
				continue
			}
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	// A cycle among acyclic edges leaves units unplaced; they still get visited.
	for _, u := range comp {
		if !placed[u] {
			order = append(order, u)
		}
	}
	return order
}
