package schedule

import (
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/zerr"
)

// Schedule is a DAG of tasks. Its roots are the tasks without required tasks.
type Schedule struct {
	mode    domain.ScheduleMode
	tasks   map[*Task]struct{}
	roots   map[*Task]struct{}
	needed  map[*unit.Unit]bool
	created int
	ordered []*Task
}

func newSchedule(mode domain.ScheduleMode) *Schedule {
	return &Schedule{
		mode:   mode,
		tasks:  make(map[*Task]struct{}),
		roots:  make(map[*Task]struct{}),
		needed: make(map[*unit.Unit]bool),
	}
}

// Mode returns the schedule mode the schedule was built with.
func (s *Schedule) Mode() domain.ScheduleMode { return s.mode }

// Tasks returns every task, ordered by id.
func (s *Schedule) Tasks() []*Task { return sortedTasks(s.tasks) }

// Roots returns the tasks without required tasks, ordered by id.
func (s *Schedule) Roots() []*Task { return sortedTasks(s.roots) }

// Len returns the number of tasks.
func (s *Schedule) Len() int { return len(s.tasks) }

// TaskOf returns the task compiling u.
func (s *Schedule) TaskOf(u *unit.Unit) (*Task, bool) {
	for t := range s.tasks {
		if t.Contains(u) {
			return t, true
		}
	}
	return nil, false
}

func (s *Schedule) newTask(u *unit.Unit) (*Task, error) {
	id, err := safecast.Conv[uint32](s.created)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrScheduleInvariant, "too many tasks"), "tasks", s.created)
	}
	s.created++

	t := &Task{
		id:        id,
		schedule:  s,
		units:     map[*unit.Unit]struct{}{u: {}},
		required:  make(map[*Task]struct{}),
		requiring: make(map[*Task]struct{}),
		state:     domain.TaskOpen,
	}
	s.tasks[t] = struct{}{}
	s.ordered = nil
	return t, nil
}

func (s *Schedule) removeTask(t *Task) {
	delete(s.tasks, t)
	delete(s.roots, t)
	s.ordered = nil
}

// Flatten returns every task exactly once, each after all tasks it requires. The order is
// validated against the unit graph before it is returned.
func (s *Schedule) Flatten() ([]*Task, error) {
	if s.ordered != nil {
		return s.ordered, nil
	}

	pending := make(map[*Task]int, len(s.tasks))
	var ready []*Task
	for t := range s.tasks {
		pending[t] = len(t.required)
		if len(t.required) == 0 {
			ready = append(ready, t)
		}
	}

	ordered := make([]*Task, 0, len(s.tasks))
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b *Task) int { return int(a.id) - int(b.id) })
		t := ready[0]
		ready = ready[1:]
		ordered = append(ordered, t)
		for next := range t.requiring {
			pending[next]--
			if pending[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(ordered) != len(s.tasks) {
		var stuck []string
		for t, n := range pending {
			if n > 0 {
				stuck = append(stuck, t.String())
			}
		}
		slices.Sort(stuck)
		return nil, zerr.With(zerr.Wrap(domain.ErrCycleDetected, "task graph"), "tasks", strings.Join(stuck, " "))
	}

	if err := s.validateOrder(ordered); err != nil {
		return nil, err
	}
	s.ordered = ordered
	return ordered, nil
}

// validateOrder checks that no unit appears twice and that every dependency that needs
// building is compiled at or before the task of its dependent.
func (s *Schedule) validateOrder(ordered []*Task) error {
	collected := make(map[*unit.Unit]bool)
	for _, t := range ordered {
		for u := range t.units {
			if collected[u] {
				return zerr.With(zerr.Wrap(domain.ErrDuplicateUnit, "flatten"), "unit", u.Name())
			}
			collected[u] = true
		}
		for _, u := range t.Units() {
			if err := s.validateDeps(u, collected); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Schedule) validateDeps(u *unit.Unit, covered map[*unit.Unit]bool) error {
	for _, dep := range u.Dependencies() {
		if s.needed[dep] && !covered[dep] {
			err := zerr.With(zerr.Wrap(domain.ErrScheduleInvariant, "dependency not scheduled before dependent"), "unit", u.Name())
			err = zerr.With(err, "sources", strings.Join(u.SourceArtifacts(), ","))
			return zerr.With(err, "dependency", dep.Name())
		}
	}
	return nil
}

// validateTasks checks that the tasks reachable from every task cover the dependencies of its
// units and that the required relation is cycle-free.
func (s *Schedule) validateTasks() error {
	for _, t := range s.Tasks() {
		reachable, err := reachableUnits(t)
		if err != nil {
			return err
		}
		for _, u := range t.Units() {
			if err := s.validateDeps(u, reachable); err != nil {
				return err
			}
		}
	}
	return nil
}

// reachableUnits collects the units of t and of every task t requires transitively. A path
// leading back to t is reported as a cycle.
func reachableUnits(t *Task) (map[*unit.Unit]bool, error) {
	units := make(map[*unit.Unit]bool)
	for u := range t.units {
		units[u] = true
	}

	pred := make(map[*Task]*Task)
	seen := make(map[*Task]bool)
	stack := t.RequiredTasks()
	for _, r := range stack {
		pred[r] = t
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == t {
			return nil, cycleError(t, pred)
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for u := range cur.units {
			units[u] = true
		}
		for _, r := range cur.RequiredTasks() {
			if !seen[r] {
				pred[r] = cur
				stack = append(stack, r)
			}
		}
	}
	return units, nil
}

func cycleError(t *Task, pred map[*Task]*Task) error {
	var path []string
	for cur := pred[t]; cur != nil && cur != t && len(path) <= len(pred); cur = pred[cur] {
		path = append(path, cur.String())
	}
	slices.Reverse(path)
	path = append([]string{t.String()}, path...)
	return zerr.With(zerr.Wrap(domain.ErrCycleDetected, "task graph"), "cycle", domain.FormatCycle(path, t.String()))
}

func (s *Schedule) String() string {
	var b strings.Builder
	b.WriteString("BuildSchedule: ")
	b.WriteString(strconv.Itoa(len(s.roots)))
	b.WriteString(" root tasks, ")
	b.WriteString(strconv.Itoa(len(s.tasks)))
	b.WriteString(" tasks\n")
	tasks := s.ordered
	if tasks == nil {
		tasks = s.Tasks()
	}
	for _, t := range tasks {
		b.WriteString("  ")
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Units returns every unit of the schedule.
func (s *Schedule) Units() []*unit.Unit {
	var units []*unit.Unit
	for _, t := range s.Tasks() {
		units = append(units, t.Units()...)
	}
	return units
}

func (s *Schedule) markNeeded(units []*unit.Unit) {
	for _, u := range units {
		s.needed[u] = true
	}
}
