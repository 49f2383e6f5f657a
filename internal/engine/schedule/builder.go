package schedule

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/zerr"
)

// Builder derives build schedules for a set of requested root units.
type Builder struct {
	roots  []*unit.Unit
	mode   domain.ScheduleMode
	logger ports.Logger
}

// NewBuilder creates a Builder for roots. Duplicate roots are ignored.
func NewBuilder(roots []*unit.Unit, mode domain.ScheduleMode, logger ports.Logger) *Builder {
	seen := make(map[*unit.Unit]bool, len(roots))
	unique := make([]*unit.Unit, 0, len(roots))
	for _, r := range roots {
		if !seen[r] {
			seen[r] = true
			unique = append(unique, r)
		}
	}
	return &Builder{roots: unique, mode: mode, logger: logger}
}

// Roots returns the requested root units.
func (b *Builder) Roots() []*unit.Unit { return b.roots }

// UpdateDependencies asks extractor for the current dependencies of every unit whose sources
// changed, of every root and of extra, and of every unit discovered on the way. New
// dependencies are added and vanished ones removed. The graph is repaired after a removal.
func (b *Builder) UpdateDependencies(extractor ports.DependencyExtractor, edited map[string]domain.Stamp, extra ...*unit.Unit) error {
	var queue []*unit.Unit
	for _, root := range b.roots {
		queue = append(queue, unit.FindUnitsWithChangedSourceFiles(root, edited)...)
	}
	if len(queue) > 0 {
		b.logger.Info("changed units: " + joinNames(queue))
	}
	queue = append(queue, b.roots...)
	queue = append(queue, extra...)

	visited := make(map[*unit.Unit]bool)
	removed := false
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if visited[u] {
			continue
		}
		visited[u] = true

		deps, err := extractor.ExtractDependencies(u)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to extract dependencies"), "unit", u.Name())
		}

		want := make(map[*unit.Unit]bool, len(deps))
		for _, dep := range deps {
			want[dep] = true
			if dep == u || u.DependsOn(dep) {
				continue
			}
			u.AddModuleDependency(dep)
			b.logger.Info(fmt.Sprintf("new dependency %s -> %s", u.Name(), dep.Name()))
			if !visited[dep] {
				queue = append(queue, dep)
			}
		}
		for _, dep := range u.Dependencies() {
			if !want[dep] {
				u.RemoveModuleDependency(dep)
				removed = true
				b.logger.Info(fmt.Sprintf("removed dependency %s -> %s", u.Name(), dep.Name()))
			}
		}
	}

	if removed {
		return b.RepairGraph()
	}
	return nil
}

// RepairGraph reclassifies every edge reachable from the roots. All circular edges become
// acyclic, then a depth-first walk marks as circular exactly the edges that lead back to a unit
// on the current path.
func (b *Builder) RepairGraph() error {
	all := allUnits(b.roots)
	for _, u := range all {
		for _, dep := range u.CircularModuleDependencies() {
			if err := u.MoveCircularToAcyclic(dep); err != nil {
				return err
			}
		}
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[*unit.Unit]int, len(all))
	var walk func(u *unit.Unit) error
	walk = func(u *unit.Unit) error {
		color[u] = gray
		for _, dep := range u.ModuleDependencies() {
			switch color[dep] {
			case gray:
				if err := u.MoveAcyclicToCircular(dep); err != nil {
					return err
				}
			case white:
				if err := walk(dep); err != nil {
					return err
				}
			}
		}
		color[u] = black
		return nil
	}
	for _, u := range slices.Concat(b.roots, all) {
		if color[u] == white {
			if err := walk(u); err != nil {
				return err
			}
		}
	}

	if err := ValidateAcyclic(b.roots); err != nil {
		return err
	}
	return ValidateCircularEdges(b.roots)
}

// CreateBuildSchedule partitions the units that need building into tasks. Units that need
// building are every reachable unit in RebuildAll mode, and otherwise the inconsistent units
// together with every unit depending on one.
func (b *Builder) CreateBuildSchedule(edited map[string]domain.Stamp, mode unit.Mode) (*Schedule, error) {
	s := newSchedule(b.mode)
	for _, root := range b.roots {
		if b.mode == domain.RebuildAll {
			s.markNeeded(unit.FindAllUnits(root))
		} else {
			s.markNeeded(unit.FindInconsistentUnits(root, edited, mode))
		}
	}

	taskOf := make(map[*unit.Unit]*Task)
	queued := make(map[*unit.Unit]bool)
	var queue []*unit.Unit
	for _, root := range b.roots {
		if !s.needed[root] || taskOf[root] != nil {
			continue
		}
		t, err := s.newTask(root)
		if err != nil {
			return nil, err
		}
		taskOf[root] = t
		queue = append(queue, root)
		queued[root] = true
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, dep := range u.Dependencies() {
			if !s.needed[dep] {
				continue
			}
			t := taskOf[u]
			depTask := taskOf[dep]

			merged, err := b.checkForCycleAndMerge(s, t, depTask, dep, taskOf)
			if err != nil {
				return nil, err
			}
			if merged == nil {
				if depTask == nil {
					if depTask, err = s.newTask(dep); err != nil {
						return nil, err
					}
					taskOf[dep] = depTask
				}
				t.addRequired(depTask)
			}

			if !queued[dep] {
				queued[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	for t := range s.tasks {
		if t.HasNoRequiredTasks() {
			s.roots[t] = struct{}{}
		}
	}

	if err := s.validateTasks(); err != nil {
		return nil, err
	}
	return s, nil
}

// checkForCycleAndMerge decides whether t requiring the task of dep would close a cycle. If so
// the tasks are merged into t and the merged task is returned. A nil task means no cycle, and
// the caller links the tasks. depTask is nil when dep has no task yet.
func (b *Builder) checkForCycleAndMerge(s *Schedule, t, depTask *Task, dep *unit.Unit, taskOf map[*unit.Unit]*Task) (*Task, error) {
	if depTask == t {
		t.addUnit(dep)
		return t, nil
	}
	if !closesCycle(t, depTask, dep) {
		return nil, nil
	}

	if depTask == nil {
		t.addUnit(dep)
		taskOf[dep] = t
		return t, nil
	}

	b.absorb(s, t, depTask, taskOf)

	// Tasks on a path from t back to t now form a cycle and are merged as well.
	down := closure(t, func(x *Task) map[*Task]struct{} { return x.required })
	up := closure(t, func(x *Task) map[*Task]struct{} { return x.requiring })
	for _, x := range s.Tasks() {
		if x != t && down[x] && up[x] {
			b.absorb(s, t, x, taskOf)
		}
	}
	if t.Requires(t) {
		return nil, zerr.With(zerr.Wrap(domain.ErrCycleDetected, "task requires itself"), "task", t.String())
	}
	return t, nil
}

func (b *Builder) absorb(s *Schedule, into, other *Task, taskOf map[*unit.Unit]*Task) {
	for u := range other.units {
		taskOf[u] = into
	}
	into.merge(other)
	s.removeTask(other)
}

// closesCycle reports whether t requiring the task of dep would close a cycle in the task
// graph or in the unit graph.
func closesCycle(t, depTask *Task, dep *unit.Unit) bool {
	if depTask != nil {
		if depTask.RequiresTransitively(t) {
			return true
		}
		for c2 := range depTask.units {
			for c := range t.units {
				if c2.DependsOnTransitively(c) {
					return true
				}
			}
		}
	}
	for c := range t.units {
		if dep.DependsOnTransitively(c) {
			return true
		}
	}
	return false
}

func closure(t *Task, next func(*Task) map[*Task]struct{}) map[*Task]bool {
	seen := make(map[*Task]bool)
	stack := []*Task{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for n := range next(cur) {
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return seen
}

func allUnits(roots []*unit.Unit) []*unit.Unit {
	seen := make(map[*unit.Unit]bool)
	var all []*unit.Unit
	for _, root := range roots {
		for _, u := range unit.FindAllUnits(root) {
			if !seen[u] {
				seen[u] = true
				all = append(all, u)
			}
		}
	}
	return all
}

func joinNames(units []*unit.Unit) string {
	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.Name())
	}
	return strings.Join(names, ", ")
}
