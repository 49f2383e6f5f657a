package unit

import (
	"go.trai.ch/cleardep/internal/core/domain"
)

// FindUnitsWithMatch returns the units reachable from start that match pred. With searchInDeps
// a unit also matches when one of its dependencies matched. Units are returned in visit order,
// dependencies first when searchInDeps is set.
func FindUnitsWithMatch(pred func(u *Unit) bool, start *Unit, searchInDeps bool) []*Unit {
	order := Order(start, searchInDeps)
	found := make(map[*Unit]bool, len(order))
	for _, u := range order {
		if pred(u) || (searchInDeps && dependsOnAny(u, found)) {
			found[u] = true
		}
	}

	// Circular edges point against the visit order, so propagate until nothing changes.
	for changed := searchInDeps; changed; {
		changed = false
		for _, u := range order {
			if !found[u] && dependsOnAny(u, found) {
				found[u] = true
				changed = true
			}
		}
	}

	units := make([]*Unit, 0, len(found))
	for _, u := range order {
		if found[u] {
			units = append(units, u)
		}
	}
	return units
}

func dependsOnAny(u *Unit, set map[*Unit]bool) bool {
	for dep := range concatKeys(u.moduleDeps, u.circularDeps) {
		if set[dep] {
			return true
		}
	}
	return false
}

// FindInconsistentUnits returns the units reachable from root that are not shallowly
// consistent, together with every unit that depends on one of them.
func FindInconsistentUnits(root *Unit, edited map[string]domain.Stamp, mode Mode) []*Unit {
	modes := make(map[*Unit]Mode)
	Visit[struct{}](root, VisitorFuncs[struct{}]{
		VisitFn: func(u *Unit, m Mode) struct{} {
			modes[u] = m
			return struct{}{}
		},
		CombineFn: func(struct{}, struct{}) struct{} { return struct{}{} },
	}, mode, false)

	return FindUnitsWithMatch(func(u *Unit) bool {
		return !u.IsConsistentShallow(edited, modes[u])
	}, root, true)
}

// FindUnitsWithChangedSourceFiles returns the units reachable from root whose source files no
// longer match their recorded stamps.
func FindUnitsWithChangedSourceFiles(root *Unit, edited map[string]domain.Stamp) []*Unit {
	return FindUnitsWithMatch(func(u *Unit) bool {
		return !u.IsConsistentWithSourceArtifacts(edited)
	}, root, false)
}

// FindAllUnits returns every unit reachable from root, root included.
func FindAllUnits(root *Unit) []*Unit {
	return FindUnitsWithMatch(func(*Unit) bool { return true }, root, false)
}
