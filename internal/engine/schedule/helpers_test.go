package schedule_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/fs"
	"go.trai.ch/cleardep/internal/core/persist"
	"go.trai.ch/cleardep/internal/core/ports/mocks"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.uber.org/mock/gomock"
)

type graph struct {
	t     *testing.T
	dir   string
	cache *persist.Cache
	units map[string]*unit.Unit
}

// newGraph creates one unit per name, each with its own source file.
func newGraph(t *testing.T, names ...string) *graph {
	t.Helper()
	g := &graph{t: t, dir: t.TempDir(), cache: persist.NewCache(), units: make(map[string]*unit.Unit)}
	stamper := fs.NewContentStamper(fs.NewHasher())
	for _, name := range names {
		u := unit.New(g.cache, stamper, unit.DefaultKind, filepath.Join(g.dir, name+".dep"))
		u.AddSourceArtifact(g.write(name, "source of "+name))
		g.units[name] = u
	}
	return g
}

func (g *graph) write(name, content string) string {
	g.t.Helper()
	path := filepath.Join(g.dir, name+".src")
	require.NoError(g.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (g *graph) get(name string) *unit.Unit { return g.units[name] }

// link adds edges given as "from", "to" pairs.
func (g *graph) link(pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		g.units[pairs[i]].AddModuleDependency(g.units[pairs[i+1]])
	}
}

func (g *graph) list(names ...string) []*unit.Unit {
	out := make([]*unit.Unit, 0, len(names))
	for _, n := range names {
		out = append(out, g.units[n])
	}
	return out
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return logger
}

func unitNames(units []*unit.Unit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.Name())
	}
	return out
}
