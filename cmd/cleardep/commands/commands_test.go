package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/cmd/cleardep/commands"
	"go.trai.ch/cleardep/internal/adapters/config"
	"go.trai.ch/cleardep/internal/adapters/fs"
	"go.trai.ch/cleardep/internal/adapters/shell"
	"go.trai.ch/cleardep/internal/adapters/telemetry"
	"go.trai.ch/cleardep/internal/adapters/watcher"
	"go.trai.ch/cleardep/internal/app"
	"go.trai.ch/cleardep/internal/build"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports/mocks"
	"go.trai.ch/cleardep/internal/engine/driver"
	"go.uber.org/mock/gomock"
)

const manifest = `version: "1"
units:
  lib:
    sources: [lib.src]
    cmd: ["true"]
  bin:
    sources: [bin.src]
    depends_on: [lib]
    cmd: ["true"]
`

func setup(t *testing.T) (*commands.CLI, *bytes.Buffer, string) {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	for name, content := range map[string]string{
		config.YAMLFilename: manifest,
		"lib.src":           "lib",
		"bin.src":           "bin",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	hasher := fs.NewHasher()
	a := app.New(&app.Dependencies{
		ConfigLoader: config.NewLoader(logger),
		Stampers:     fs.NewStamperFactory(hasher),
		Resolver:     fs.NewResolver(fs.NewWalker()),
		Hasher:       hasher,
		Verifier:     fs.NewVerifier(),
		Executor:     shell.NewExecutor(logger),
		Watcher:      watcher.NewWatcher(logger),
		Logger:       logger,
		Driver:       driver.New(telemetry.NewNoOp(), logger),
	})

	cli := commands.New(app.NewComponents(a, logger, telemetry.NewNoOp()))
	out := &bytes.Buffer{}
	cli.SetOutput(out)
	return cli, out, dir
}

func execute(t *testing.T, cli *commands.CLI, args ...string) error {
	t.Helper()
	cli.SetArgs(args)
	return cli.Execute(context.Background())
}

func TestPlan(t *testing.T) {
	cli, out, dir := setup(t)

	require.NoError(t, execute(t, cli, "plan", "-C", dir))
	g := goldie.New(t)
	g.Assert(t, "plan", out.Bytes())
}

func TestBuildThenPlan(t *testing.T) {
	cli, out, dir := setup(t)

	require.NoError(t, execute(t, cli, "build", "-C", dir, "-j", "2"))
	assert.FileExists(t, filepath.Join(dir, domain.DefaultStateDir, "lib.dep"))

	require.NoError(t, execute(t, cli, "plan", "-C", dir))
	assert.Equal(t, "Nothing to build.\n", out.String())

	out.Reset()
	require.NoError(t, execute(t, cli, "plan", "-C", dir, "--mode", "rebuild-all", "lib"))
	assert.Equal(t, "1 tasks (rebuild-all)\n 1. lib\n", out.String())
}

func TestStatus(t *testing.T) {
	cli, out, dir := setup(t)

	require.NoError(t, execute(t, cli, "build", "-C", dir, "lib"))
	require.NoError(t, execute(t, cli, "status", "-C", dir))
	g := goldie.New(t)
	g.Assert(t, "status", out.Bytes())
}

func TestClean(t *testing.T) {
	cli, _, dir := setup(t)

	require.NoError(t, execute(t, cli, "build", "-C", dir))
	require.NoError(t, execute(t, cli, "clean", "-C", dir))
	assert.NoDirExists(t, filepath.Join(dir, domain.DefaultStateDir))
}

func TestInvalidMode(t *testing.T) {
	cli, _, dir := setup(t)

	err := execute(t, cli, "build", "-C", dir, "--mode", "eventually")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestVersion(t *testing.T) {
	cli, out, _ := setup(t)

	require.NoError(t, execute(t, cli, "version"))
	assert.Equal(t, "cleardep version "+build.Info()+"\n", out.String())
}
