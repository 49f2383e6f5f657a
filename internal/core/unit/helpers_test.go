package unit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/fs"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/persist"
	"go.trai.ch/cleardep/internal/core/unit"
)

type fixture struct {
	t       *testing.T
	dir     string
	cache   *persist.Cache
	stamper domain.Stamper
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:       t,
		dir:     t.TempDir(),
		cache:   persist.NewCache(),
		stamper: fs.NewContentStamper(fs.NewHasher()),
	}
}

func (f *fixture) file(name, content string) string {
	f.t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (f *fixture) depPath(name string) string {
	return filepath.Join(f.dir, "state", name+".dep")
}

// unit returns a unit with one source file named after it.
func (f *fixture) unit(name string) *unit.Unit {
	f.t.Helper()
	u := unit.New(f.cache, f.stamper, unit.DefaultKind, f.depPath(name))
	u.AddSourceArtifact(f.file(name+".src", "source of "+name))
	return u
}

func names(units []*unit.Unit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.Name())
	}
	return out
}
