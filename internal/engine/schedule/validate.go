package schedule

import (
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/zerr"
)

// ValidateAcyclic checks that the acyclic edges reachable from roots contain no cycle.
func ValidateAcyclic(roots []*unit.Unit) error {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[*unit.Unit]int)
	var path []string

	var visit func(u *unit.Unit) error
	visit = func(u *unit.Unit) error {
		state[u] = onPath
		path = append(path, u.Name())
		for _, dep := range u.ModuleDependencies() {
			switch state[dep] {
			case onPath:
				return zerr.With(zerr.Wrap(domain.ErrCycleDetected, "acyclic dependencies"), "cycle", domain.FormatCycle(path, dep.Name()))
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[u] = done
		return nil
	}

	for _, u := range allUnits(roots) {
		if state[u] == unvisited {
			if err := visit(u); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateCircularEdges checks that every circular edge reachable from roots closes a cycle,
// that is its target reaches its source over acyclic edges.
func ValidateCircularEdges(roots []*unit.Unit) error {
	for _, u := range allUnits(roots) {
		for _, dep := range u.CircularModuleDependencies() {
			if !dep.DependsOnTransitivelyNoncircularly(u) {
				err := zerr.With(zerr.Wrap(domain.ErrNotCircular, "circular dependencies"), "unit", u.Name())
				return zerr.With(err, "dependency", dep.Name())
			}
		}
	}
	return nil
}
