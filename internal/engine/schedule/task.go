// Package schedule turns a possibly cyclic unit graph into an ordered, cycle-free sequence of
// build tasks.
package schedule

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/zerr"
)

// Task is a set of units that is compiled together. Units on a cycle end up in one task.
type Task struct {
	id        uint32
	schedule  *Schedule
	units     map[*unit.Unit]struct{}
	required  map[*Task]struct{}
	requiring map[*Task]struct{}
	state     domain.TaskState
}

// ID returns the task's identifier. Identifiers increase in creation order.
func (t *Task) ID() uint32 { return t.id }

// State returns the task's lifecycle state.
func (t *Task) State() domain.TaskState { return t.state }

// SetState sets the task's lifecycle state.
func (t *Task) SetState(s domain.TaskState) { t.state = s }

// IsCompleted reports whether the task succeeded or failed.
func (t *Task) IsCompleted() bool { return t.state.IsTerminal() }

// Units returns the units to compile, sorted by persistent path.
func (t *Task) Units() []*unit.Unit {
	return slices.SortedFunc(maps.Keys(t.units), func(a, b *unit.Unit) int {
		return cmp.Compare(a.PersistentPath(), b.PersistentPath())
	})
}

// Contains reports whether u is compiled by the task.
func (t *Task) Contains(u *unit.Unit) bool {
	_, ok := t.units[u]
	return ok
}

// Requires reports whether t directly requires other.
func (t *Task) Requires(other *Task) bool {
	_, ok := t.required[other]
	return ok
}

// RequiresTransitively reports whether other is reachable from t over required tasks.
func (t *Task) RequiresTransitively(other *Task) bool {
	seen := map[*Task]bool{t: true}
	stack := []*Task{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for r := range cur.required {
			if r == other {
				return true
			}
			if !seen[r] {
				seen[r] = true
				stack = append(stack, r)
			}
		}
	}
	return false
}

// RequiredTasks returns the tasks t requires, ordered by id.
func (t *Task) RequiredTasks() []*Task { return sortedTasks(t.required) }

// RequiringTasks returns the tasks that require t, ordered by id.
func (t *Task) RequiringTasks() []*Task { return sortedTasks(t.requiring) }

// HasNoRequiredTasks reports whether t is a root of its schedule.
func (t *Task) HasNoRequiredTasks() bool { return len(t.required) == 0 }

func (t *Task) addUnit(u *unit.Unit) { t.units[u] = struct{}{} }

func (t *Task) addRequired(dep *Task) {
	t.required[dep] = struct{}{}
	dep.requiring[t] = struct{}{}
}

// merge moves the units and edges of other into t. Edges between t and other are dropped.
func (t *Task) merge(other *Task) {
	if other == t {
		return
	}
	maps.Copy(t.units, other.units)
	delete(t.required, other)
	delete(t.requiring, other)

	for r := range other.required {
		delete(r.requiring, other)
		if r != t {
			t.addRequired(r)
		}
	}
	for r := range other.requiring {
		delete(r.required, other)
		if r != t {
			r.addRequired(t)
		}
	}
	clear(other.units)
	clear(other.required)
	clear(other.requiring)
}

// NeedsToBeBuilt reports whether any unit of the task has to be compiled. Every required task
// must have finished. A task whose required task failed is never built.
func (t *Task) NeedsToBeBuilt(edited map[string]domain.Stamp, mode unit.Mode) (bool, error) {
	for _, r := range t.RequiredTasks() {
		switch r.state {
		case domain.TaskOpen, domain.TaskInProgress:
			err := zerr.With(zerr.Wrap(domain.ErrIllegalBuildState, "needs to be built"), "task", t.String())
			err = zerr.With(err, "required", r.String())
			return false, zerr.With(err, "state", r.state.String())
		case domain.TaskFailure:
			return false, nil
		case domain.TaskSuccess:
		}
	}

	interfaceOnly := t.schedule != nil && t.schedule.mode == domain.RebuildInconsistentInterface
	for _, u := range t.Units() {
		if !u.IsConsistentShallow(edited, mode) || !u.IsConsistentToDependencyInterfaces() {
			return true, nil
		}
		if !interfaceOnly && !u.IsConsistent(edited, mode) {
			return true, nil
		}
	}
	return false, nil
}

func (t *Task) String() string {
	var b strings.Builder
	b.WriteString("Task_")
	b.WriteString(strconv.FormatUint(uint64(t.id), 10))
	b.WriteByte('(')
	for i, r := range t.RequiredTasks() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(r.id), 10))
	}
	b.WriteString(")[")
	for i, u := range t.Units() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(u.Name())
	}
	b.WriteByte(']')
	return b.String()
}

func sortedTasks(set map[*Task]struct{}) []*Task {
	return slices.SortedFunc(maps.Keys(set), func(a, b *Task) int { return cmp.Compare(a.id, b.id) })
}
