package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/fs"
)

func TestResolver_ResolveSources_Glob(t *testing.T) {
	tmpDir := t.TempDir()

	for _, f := range []string{"a.sg", "b.sg", "c.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, f), []byte("content"), 0o600))
	}

	resolver := fs.NewResolver(fs.NewWalker())

	resolved, err := resolver.ResolveSources([]string{"*.sg"}, tmpDir)
	require.NoError(t, err)

	require.Len(t, resolved, 2)
	assert.Equal(t, filepath.Join(tmpDir, "a.sg"), resolved[0])
	assert.Equal(t, filepath.Join(tmpDir, "b.sg"), resolved[1])
}

func TestResolver_ResolveSources_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "src", "nested"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "src", "a.sg"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "src", "nested", "b.sg"), []byte("b"), 0o600))

	resolver := fs.NewResolver(fs.NewWalker())

	resolved, err := resolver.ResolveSources([]string{"src", "src/a.sg"}, tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "src", "a.sg"),
		filepath.Join(tmpDir, "src", "nested", "b.sg"),
	}, resolved)
}

func TestResolver_ResolveSources_NoMatch(t *testing.T) {
	resolver := fs.NewResolver(fs.NewWalker())

	_, err := resolver.ResolveSources([]string{"missing/*.sg"}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source not found")
}

func TestResolver_ResolveSources_GlobError(t *testing.T) {
	resolver := fs.NewResolver(fs.NewWalker())

	_, err := resolver.ResolveSources([]string{"["}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to glob path")
}

func TestAbsolute(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "x")

	got := fs.Absolute([]string{"a/b", abs}, root)
	assert.Equal(t, []string{filepath.Join(root, "a/b"), abs}, got)
}
