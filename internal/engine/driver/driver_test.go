package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/fs"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/persist"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/ports/mocks"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/cleardep/internal/engine/driver"
	"go.trai.ch/cleardep/internal/engine/schedule"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	t     *testing.T
	dir   string
	units map[string]*unit.Unit
}

// newFixture creates units whose sources are recorded as they are on disk.
func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	f := &fixture{t: t, dir: t.TempDir(), units: make(map[string]*unit.Unit)}
	cache := persist.NewCache()
	stamper := fs.NewContentStamper(fs.NewHasher())
	for _, name := range names {
		u := unit.New(cache, stamper, unit.DefaultKind, filepath.Join(f.dir, name+".dep"))
		u.AddSourceArtifact(f.edit(name, "v1"))
		f.units[name] = u
	}
	return f
}

func (f *fixture) edit(name, content string) string {
	f.t.Helper()
	path := filepath.Join(f.dir, name+".src")
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (f *fixture) link(from, to string) { f.units[from].AddModuleDependency(f.units[to]) }

func (f *fixture) schedule(root string) *schedule.Schedule {
	f.t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(f.t))
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	s, err := schedule.NewBuilder([]*unit.Unit{f.units[root]}, domain.RebuildAll, logger).CreateBuildSchedule(nil, nil)
	require.NoError(f.t, err)
	return s
}

// recordingCompiler remembers the names of compiled units in call order.
type recordingCompiler struct {
	mu       sync.Mutex
	compiled []string
	fail     map[string]error
}

func (c *recordingCompiler) Compile(_ context.Context, units []*unit.Unit) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range units {
		c.compiled = append(c.compiled, u.Name())
		if err := c.fail[u.Name()]; err != nil {
			return err
		}
	}
	return nil
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	return logger
}

func newTelemetry(t *testing.T) (*mocks.MockTelemetry, *mocks.MockVertex) {
	ctrl := gomock.NewController(t)
	rec := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	rec.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Vertex) { return ctx, vertex },
	).AnyTimes()
	return rec, vertex
}

func outcomeByUnit(d *driver.Driver, s *schedule.Schedule) map[string]driver.Outcome {
	outcomes := d.Outcomes()
	out := make(map[string]driver.Outcome)
	for _, task := range s.Tasks() {
		for _, u := range task.Units() {
			out[u.Name()] = outcomes[task.ID()]
		}
	}
	return out
}

func TestRun_CompilesInDependencyOrder(t *testing.T) {
	f := newFixture(t, "a", "b", "c")
	f.link("a", "b")
	f.link("b", "c")
	f.edit("a", "v2")
	f.edit("c", "v2")

	rec, vertex := newTelemetry(t)
	vertex.EXPECT().Complete(nil).Times(3)

	s := f.schedule("a")
	compiler := &recordingCompiler{}
	d := driver.New(rec, quietLogger(t))

	require.NoError(t, d.Run(context.Background(), s, compiler, driver.Options{}))
	assert.Equal(t, []string{"c", "b", "a"}, compiler.compiled)
	assert.Equal(t, map[string]driver.Outcome{
		"a": driver.OutcomeCompiled,
		"b": driver.OutcomeCompiled,
		"c": driver.OutcomeCompiled,
	}, outcomeByUnit(d, s))
	for _, task := range s.Tasks() {
		assert.Equal(t, domain.TaskSuccess, task.State())
	}
}

func TestRun_UpToDate(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.link("a", "b")

	rec, vertex := newTelemetry(t)
	vertex.EXPECT().Cached().Times(2)
	vertex.EXPECT().Complete(nil).Times(2)

	s := f.schedule("a")
	compiler := &recordingCompiler{}
	d := driver.New(rec, quietLogger(t))

	require.NoError(t, d.Run(context.Background(), s, compiler, driver.Options{}))
	assert.Empty(t, compiler.compiled)
	assert.Equal(t, map[string]driver.Outcome{
		"a": driver.OutcomeUpToDate,
		"b": driver.OutcomeUpToDate,
	}, outcomeByUnit(d, s))
}

func TestRun_EditedStampsOverrideDisk(t *testing.T) {
	f := newFixture(t, "a")

	rec, vertex := newTelemetry(t)
	vertex.EXPECT().Complete(nil)

	s := f.schedule("a")
	compiler := &recordingCompiler{}
	d := driver.New(rec, quietLogger(t))

	edited := map[string]domain.Stamp{filepath.Join(f.dir, "a.src"): 42}
	require.NoError(t, d.Run(context.Background(), s, compiler, driver.Options{Edited: edited}))
	assert.Equal(t, []string{"a"}, compiler.compiled)
}

func TestRun_FailureSkipsDependents(t *testing.T) {
	f := newFixture(t, "a", "b", "c")
	f.link("a", "b")
	f.link("a", "c")
	f.edit("b", "v2")

	boom := errors.New("exit status 1")
	rec, vertex := newTelemetry(t)
	vertex.EXPECT().Complete(boom)
	vertex.EXPECT().Cached()
	vertex.EXPECT().Complete(nil)

	logger := quietLogger(t)
	logger.EXPECT().Warn(gomock.Any())

	s := f.schedule("a")
	compiler := &recordingCompiler{fail: map[string]error{"b": boom}}
	d := driver.New(rec, logger)

	err := d.Run(context.Background(), s, compiler, driver.Options{})
	require.ErrorIs(t, err, domain.ErrBuildFailed)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"b"}, compiler.compiled)
	assert.Equal(t, map[string]driver.Outcome{
		"a": driver.OutcomeSkipped,
		"b": driver.OutcomeFailed,
		"c": driver.OutcomeUpToDate,
	}, outcomeByUnit(d, s))
}

func TestRun_Parallel(t *testing.T) {
	f := newFixture(t, "a", "b", "c", "d")
	f.link("a", "b")
	f.link("a", "c")
	f.link("a", "d")
	for _, name := range []string{"a", "b", "c", "d"} {
		f.edit(name, "v2")
	}

	rec, vertex := newTelemetry(t)
	vertex.EXPECT().Complete(nil).Times(4)

	s := f.schedule("a")
	compiler := &recordingCompiler{}
	d := driver.New(rec, quietLogger(t))

	require.NoError(t, d.Run(context.Background(), s, compiler, driver.Options{Parallelism: 3}))
	require.Len(t, compiler.compiled, 4)
	assert.ElementsMatch(t, []string{"b", "c", "d"}, compiler.compiled[:3])
	assert.Equal(t, "a", compiler.compiled[3])
}

func TestRun_Force(t *testing.T) {
	f := newFixture(t, "a", "b")
	f.link("a", "b")

	rec, vertex := newTelemetry(t)
	vertex.EXPECT().Complete(nil).Times(2)

	s := f.schedule("a")
	compiler := &recordingCompiler{}
	d := driver.New(rec, quietLogger(t))

	require.NoError(t, d.Run(context.Background(), s, compiler, driver.Options{Force: true}))
	assert.Equal(t, []string{"b", "a"}, compiler.compiled)
}

func TestRun_Canceled(t *testing.T) {
	f := newFixture(t, "a")
	f.edit("a", "v2")

	rec, _ := newTelemetry(t)
	s := f.schedule("a")
	compiler := &recordingCompiler{}
	d := driver.New(rec, quietLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Run(ctx, s, compiler, driver.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, compiler.compiled)
	assert.Equal(t, driver.OutcomePending, outcomeByUnit(d, s)["a"])
}
