// Package driver drains a build schedule and compiles the tasks that need building.
package driver

import (
	"context"
	"errors"
	"maps"
	"sync"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/cleardep/internal/engine/schedule"
	"go.trai.ch/zerr"
)

// Outcome describes what happened to a task during a run.
type Outcome string

const (
	// OutcomePending indicates the task is waiting for its required tasks.
	OutcomePending Outcome = "Pending"
	// OutcomeRunning indicates the task is being compiled.
	OutcomeRunning Outcome = "Running"
	// OutcomeCompiled indicates the task was compiled successfully.
	OutcomeCompiled Outcome = "Compiled"
	// OutcomeUpToDate indicates the task did not need to be compiled.
	OutcomeUpToDate Outcome = "UpToDate"
	// OutcomeFailed indicates the compilation of the task failed.
	OutcomeFailed Outcome = "Failed"
	// OutcomeSkipped indicates the task was not compiled because a required task failed.
	OutcomeSkipped Outcome = "Skipped"
)

// Options configures a run.
type Options struct {
	// Edited holds stamps of source files that are open in an editor.
	Edited map[string]domain.Stamp
	// Mode is passed to the consistency checks.
	Mode unit.Mode
	// Parallelism bounds the number of tasks compiled at once. Values below one mean one.
	Parallelism int
	// Force compiles every task whose required tasks succeeded, consistent or not.
	Force bool
}

// Driver compiles the tasks of a schedule in dependency order.
type Driver struct {
	telemetry ports.Telemetry
	logger    ports.Logger

	mu       sync.RWMutex
	outcomes map[uint32]Outcome
}

// New creates a Driver.
func New(telemetry ports.Telemetry, logger ports.Logger) *Driver {
	return &Driver{
		telemetry: telemetry,
		logger:    logger,
		outcomes:  make(map[uint32]Outcome),
	}
}

// WithTelemetry returns a Driver with the same logger recording to telemetry.
func (d *Driver) WithTelemetry(telemetry ports.Telemetry) *Driver {
	return New(telemetry, d.logger)
}

// Outcomes returns a copy of the outcome of every task of the last run, keyed by task id.
func (d *Driver) Outcomes() map[uint32]Outcome {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.outcomes)
}

func (d *Driver) setOutcome(t *schedule.Task, o Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outcomes[t.ID()] = o
}

// Run compiles the tasks of s with compiler. A task starts once every task it requires has
// finished. Tasks depending on a failed task are skipped. Run returns an error wrapping
// domain.ErrBuildFailed when a task failed.
func (d *Driver) Run(ctx context.Context, s *schedule.Schedule, compiler ports.Compiler, opts Options) error {
	tasks, err := s.Flatten()
	if err != nil {
		return err
	}

	state := d.newRunState(ctx, tasks, compiler, opts)
	for {
		state.schedule()
		if state.active == 0 {
			// Either everything ran or scheduling stopped on cancellation or a fatal error.
			break
		}
		state.handleResult(<-state.resultsCh)
	}

	if state.fatal != nil {
		return state.fatal
	}
	if state.finished < len(tasks) && state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}
	if state.failed > 0 {
		failed := zerr.With(zerr.Wrap(domain.ErrBuildFailed, "run"), "failed_tasks", state.failed)
		return errors.Join(failed, state.errs)
	}
	return state.errs
}

type result struct {
	task *schedule.Task
	err  error
}

type runState struct {
	d           *Driver
	ctx         context.Context
	compiler    ports.Compiler
	opts        Options
	pending     map[*schedule.Task]int
	ready       []*schedule.Task
	active      int
	failed      int
	finished    int
	resultsCh   chan result
	errs        error
	fatal       error
	parallelism int
}

func (d *Driver) newRunState(ctx context.Context, tasks []*schedule.Task, compiler ports.Compiler, opts Options) *runState {
	parallelism := max(opts.Parallelism, 1)

	d.mu.Lock()
	d.outcomes = make(map[uint32]Outcome, len(tasks))
	d.mu.Unlock()

	pending := make(map[*schedule.Task]int, len(tasks))
	var ready []*schedule.Task
	for _, t := range tasks {
		d.setOutcome(t, OutcomePending)
		pending[t] = len(t.RequiredTasks())
		if pending[t] == 0 {
			ready = append(ready, t)
		}
	}

	return &runState{
		d:           d,
		ctx:         ctx,
		compiler:    compiler,
		opts:        opts,
		pending:     pending,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		parallelism: parallelism,
	}
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil && state.fatal == nil {
		t := state.ready[0]
		state.ready = state.ready[1:]

		needs, err := t.NeedsToBeBuilt(state.opts.Edited, state.opts.Mode)
		if err != nil {
			state.fatal = err
			return
		}
		if state.opts.Force && !requiredFailed(t) {
			needs = true
		}
		if !needs {
			state.settle(t)
			continue
		}

		t.SetState(domain.TaskInProgress)
		state.d.setOutcome(t, OutcomeRunning)
		state.d.logger.Info("compiling " + t.String())
		state.active++

		go func(t *schedule.Task) {
			state.resultsCh <- result{task: t, err: state.compile(t)}
		}(t)
	}
}

func requiredFailed(t *schedule.Task) bool {
	for _, r := range t.RequiredTasks() {
		if r.State() == domain.TaskFailure {
			return true
		}
	}
	return false
}

// settle finishes a task that does not need to be compiled.
func (state *runState) settle(t *schedule.Task) {
	if requiredFailed(t) {
		t.SetState(domain.TaskFailure)
		state.d.setOutcome(t, OutcomeSkipped)
		state.d.logger.Warn("skipping " + t.String() + ": a required task failed")
		state.release(t)
		return
	}

	_, vertex := state.d.telemetry.Record(state.ctx, t.String())
	vertex.Cached()
	vertex.Complete(nil)
	t.SetState(domain.TaskSuccess)
	state.d.setOutcome(t, OutcomeUpToDate)
	state.release(t)
}

func (state *runState) compile(t *schedule.Task) error {
	ctx, vertex := state.d.telemetry.Record(state.ctx, t.String())
	err := state.compiler.Compile(ctx, t.Units())
	vertex.Complete(err)
	return err
}

func (state *runState) handleResult(res result) {
	state.active--
	if res.err != nil {
		wrapped := zerr.With(zerr.Wrap(res.err, "task compilation failed"), "task", res.task.String())
		state.errs = errors.Join(state.errs, wrapped)
		state.failed++
		res.task.SetState(domain.TaskFailure)
		state.d.setOutcome(res.task, OutcomeFailed)
	} else {
		res.task.SetState(domain.TaskSuccess)
		state.d.setOutcome(res.task, OutcomeCompiled)
	}
	state.release(res.task)
}

func (state *runState) release(t *schedule.Task) {
	state.finished++
	for _, next := range t.RequiringTasks() {
		state.pending[next]--
		if state.pending[next] == 0 {
			state.ready = append(state.ready, next)
		}
	}
}
