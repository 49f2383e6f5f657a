// Package app implements the application layer for cleardep.
package app

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
	"go.trai.ch/cleardep/internal/adapters/extractor" //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/adapters/tui"       //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/persist"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/cleardep/internal/engine/driver"
	"go.trai.ch/cleardep/internal/engine/schedule"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	stampers     ports.StamperFactory
	resolver     ports.SourceResolver
	hasher       ports.Hasher
	verifier     ports.Verifier
	executor     ports.Executor
	watcher      ports.Watcher
	logger       ports.Logger
	driver       *driver.Driver
	cache        *persist.Cache
	teaOptions   []tea.ProgramOption
}

// Dependencies groups the ports App is built from.
type Dependencies struct {
	ConfigLoader ports.ConfigLoader
	Stampers     ports.StamperFactory
	Resolver     ports.SourceResolver
	Hasher       ports.Hasher
	Verifier     ports.Verifier
	Executor     ports.Executor
	Watcher      ports.Watcher
	Logger       ports.Logger
	Driver       *driver.Driver
}

// New creates a new App instance. Units read by the App are shared through one entity cache
// for its whole lifetime.
func New(deps *Dependencies) *App {
	return &App{
		configLoader: deps.ConfigLoader,
		stampers:     deps.Stampers,
		resolver:     deps.Resolver,
		hasher:       deps.Hasher,
		verifier:     deps.Verifier,
		executor:     deps.Executor,
		watcher:      deps.Watcher,
		logger:       deps.Logger,
		driver:       deps.Driver,
		cache:        persist.NewCache(),
	}
}

// RunOptions configures the project operations.
type RunOptions struct {
	// Dir is the directory the manifest is searched from. Empty means the working directory.
	Dir string
	// Targets names the root units. Empty means every unit.
	Targets []string
	// Mode overrides the schedule mode of the manifest when not empty.
	Mode string
	// Stamper overrides the stamper kind of the manifest when not empty.
	Stamper string
	// Force compiles every scheduled task.
	Force bool
	// Parallelism bounds the number of tasks compiled at once. Zero selects the CPU count.
	Parallelism int
	// Debounce is the quiet period before watch mode rebuilds.
	Debounce time.Duration
	// TUI shows the progress of Build in an interactive terminal view.
	TUI bool
}

// session is one materialized project with its dependency graph brought up to date.
type session struct {
	project   *Project
	builder   *schedule.Builder
	extractor *extractor.Extractor
	mode      domain.ScheduleMode
}

func (a *App) open(opts *RunOptions) (*session, error) {
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		dir = wd
	}

	m, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	mode := m.Mode
	if opts.Mode != "" {
		if mode, err = domain.ParseScheduleMode(opts.Mode); err != nil {
			return nil, err
		}
	}
	if opts.Force {
		mode = domain.RebuildAll
	}

	stamperKind := m.Stamper
	if opts.Stamper != "" {
		stamperKind = opts.Stamper
	}
	stamper, err := a.stampers.Stamper(stamperKind)
	if err != nil {
		return nil, err
	}

	p, err := materialize(m, stamper, a.cache, a.logger)
	if err != nil {
		return nil, err
	}
	roots, err := p.Roots(opts.Targets)
	if err != nil {
		return nil, err
	}

	s := &session{
		project:   p,
		builder:   schedule.NewBuilder(roots, mode, a.logger),
		extractor: extractor.New(m, p.units),
		mode:      mode,
	}
	if err := s.builder.UpdateDependencies(s.extractor, nil, p.Units()...); err != nil {
		return nil, zerr.Wrap(err, "failed to update dependencies")
	}
	return s, nil
}

// Plan computes the build schedule for opts without compiling anything.
func (a *App) Plan(_ context.Context, opts RunOptions) (*schedule.Schedule, error) {
	s, err := a.open(&opts)
	if err != nil {
		return nil, err
	}
	sched, err := s.builder.CreateBuildSchedule(nil, s.project.mode)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create build schedule")
	}
	if _, err := sched.Flatten(); err != nil {
		return nil, zerr.Wrap(err, "failed to order build schedule")
	}
	return sched, nil
}

// Build compiles the units of opts that need compiling.
func (a *App) Build(ctx context.Context, opts RunOptions) error {
	s, err := a.open(&opts)
	if err != nil {
		return err
	}
	sched, err := s.builder.CreateBuildSchedule(nil, s.project.mode)
	if err != nil {
		return zerr.Wrap(err, "failed to create build schedule")
	}
	if !opts.TUI {
		return a.run(ctx, s, sched, &opts, a.driver)
	}

	tasks, err := sched.Flatten()
	if err != nil {
		return zerr.Wrap(err, "failed to order build schedule")
	}
	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		names = append(names, t.String())
	}
	return tui.Run(ctx, names, func(ctx context.Context, w progrock.Writer) error {
		rec := telemetry.NewRecorder(w)
		defer func() {
			_ = rec.Close()
		}()
		return a.run(ctx, s, sched, &opts, a.driver.WithTelemetry(rec))
	}, a.teaOptions...)
}

// WithTeaOptions sets the options of the terminal view shown by Build.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = opts
	return a
}

func (a *App) run(ctx context.Context, s *session, sched *schedule.Schedule, opts *RunOptions, d *driver.Driver) error {
	compiler := &unitCompiler{
		project:   s.project,
		executor:  a.executor,
		resolver:  a.resolver,
		hasher:    a.hasher,
		verifier:  a.verifier,
		extractor: s.extractor,
		terminal:  opts.TUI,
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	runErr := d.Run(ctx, sched, compiler, driver.Options{
		Mode:        s.project.mode,
		Parallelism: parallelism,
		Force:       opts.Force,
	})
	a.logger.Info(summarize(d.Outcomes()))
	if runErr != nil {
		return zerr.Wrap(runErr, "build execution failed")
	}
	return nil
}

func summarize(outcomes map[uint32]driver.Outcome) string {
	counts := make(map[driver.Outcome]int)
	for _, o := range outcomes {
		counts[o]++
	}
	return fmt.Sprintf("%d compiled, %d up to date, %d failed, %d skipped",
		counts[driver.OutcomeCompiled], counts[driver.OutcomeUpToDate],
		counts[driver.OutcomeFailed], counts[driver.OutcomeSkipped])
}

// UnitState classifies a unit for the status report.
type UnitState string

const (
	// StateUpToDate means the unit and everything it depends on are consistent.
	StateUpToDate UnitState = "up-to-date"
	// StateNew means the unit was never built.
	StateNew UnitState = "new"
	// StateModified means the unit itself is inconsistent.
	StateModified UnitState = "modified"
	// StateStale means the unit is consistent but depends on an inconsistent unit.
	StateStale UnitState = "stale"
)

// UnitStatus is one line of the status report.
type UnitStatus struct {
	Name  string
	State UnitState
}

// Status reports the consistency of the units reachable from the roots of opts.
func (a *App) Status(_ context.Context, opts RunOptions) ([]UnitStatus, error) {
	s, err := a.open(&opts)
	if err != nil {
		return nil, err
	}
	mode := s.project.mode

	stale := make(map[*unit.Unit]bool)
	for _, root := range s.builder.Roots() {
		for _, u := range unit.FindInconsistentUnits(root, nil, mode) {
			stale[u] = true
		}
	}

	var report []UnitStatus
	for _, u := range s.project.Units() {
		if !isReachable(s.builder.Roots(), u) {
			continue
		}
		state := StateUpToDate
		switch {
		case !u.IsPersisted():
			state = StateNew
		case !u.IsConsistentShallow(nil, mode) || !u.IsConsistentToDependencyInterfaces():
			state = StateModified
		case stale[u]:
			state = StateStale
		}
		report = append(report, UnitStatus{Name: u.Name(), State: state})
	}
	return report, nil
}

func isReachable(roots []*unit.Unit, u *unit.Unit) bool {
	for _, r := range roots {
		if r == u || r.DependsOnTransitively(u) {
			return true
		}
	}
	return false
}

// Clean removes the persisted units of the project and forgets the live ones.
func (a *App) Clean(_ context.Context, opts RunOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	m, err := a.configLoader.Load(dir)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	p := &Project{Manifest: m}
	state := p.stateDir()
	if err := os.RemoveAll(state); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove state directory"), "path", state)
	}
	a.cache.Purge()
	a.logger.Info("removed " + state)
	return nil
}
