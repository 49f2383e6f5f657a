package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cleardep/internal/adapters/fs"
)

func TestVerifier_Missing(t *testing.T) {
	tmpDir := t.TempDir()
	verifier := fs.NewVerifier()

	out1 := filepath.Join(tmpDir, "out1.o")
	out2 := filepath.Join(tmpDir, "out2.o")
	require.NoError(t, os.WriteFile(out1, []byte("content"), 0o600))
	require.NoError(t, os.WriteFile(out2, []byte("content"), 0o600))

	missing, err := verifier.Missing([]string{out1, out2})
	require.NoError(t, err)
	assert.Empty(t, missing)

	gone := filepath.Join(tmpDir, "gone.o")
	missing, err = verifier.Missing([]string{out1, gone})
	require.NoError(t, err)
	assert.Equal(t, []string{gone}, missing)
}
