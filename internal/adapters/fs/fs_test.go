package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/cleardep/internal/adapters/fs"
	"go.trai.ch/cleardep/internal/core/domain"
)

func TestWalker_WalkFiles(t *testing.T) {
	// tmp/
	//   .git/config
	//   .cleardep/core.dep
	//   ignored/file
	//   src/main.sg
	//   README.md
	tmpDir := t.TempDir()

	for _, rel := range []string{".git/config", ".cleardep/core.dep", "ignored/file", "src/main.sg", "README.md"} {
		path := filepath.Join(tmpDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(rel), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	walker := fs.NewWalker()

	files := make(map[string]bool)
	for path := range walker.WalkFiles(tmpDir, []string{"ignored"}) {
		rel, err := filepath.Rel(tmpDir, path)
		if err != nil {
			t.Fatal(err)
		}
		files[rel] = true
	}

	if files[".git/config"] {
		t.Error("expected .git/config to be skipped")
	}
	if files[".cleardep/core.dep"] {
		t.Error("expected state directory to be skipped")
	}
	if files["ignored/file"] {
		t.Error("expected ignored/file to be skipped")
	}
	if !files["src/main.sg"] {
		t.Error("expected src/main.sg to be found")
	}
	if !files["README.md"] {
		t.Error("expected README.md to be found")
	}
}

func TestHasher_ComputeFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o600); err != nil {
		t.Fatal(err)
	}

	hasher := fs.NewHasher()

	hash1, err := hasher.ComputeFileHash(path)
	if err != nil {
		t.Fatalf("ComputeFileHash failed: %v", err)
	}
	if hash1 == 0 {
		t.Error("expected non-zero hash")
	}

	hash2, err := hasher.ComputeFileHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if hash1 != hash2 {
		t.Error("expected deterministic hash")
	}

	if _, err := hasher.ComputeFileHash(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestContentStamper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.sg")
	stamper := fs.NewContentStamper(fs.NewHasher())

	if got := stamper.StampOf(path); got != domain.AbsentStamp {
		t.Fatalf("expected absent stamp for missing file, got %d", got)
	}

	if err := os.WriteFile(path, []byte("module a"), 0o600); err != nil {
		t.Fatal(err)
	}
	first := stamper.StampOf(path)
	if first == domain.AbsentStamp {
		t.Fatal("expected a present stamp")
	}
	if again := stamper.StampOf(path); again != first {
		t.Errorf("expected stable stamp, got %d and %d", first, again)
	}

	if err := os.WriteFile(path, []byte("module a2"), 0o600); err != nil {
		t.Fatal(err)
	}
	if changed := stamper.StampOf(path); changed == first {
		t.Error("expected stamp to change with content")
	}
}

func TestTimeStamper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.sg")
	var stamper fs.TimeStamper

	if got := stamper.StampOf(path); got != domain.AbsentStamp {
		t.Fatalf("expected absent stamp for missing file, got %d", got)
	}

	if err := os.WriteFile(path, []byte("module a"), 0o600); err != nil {
		t.Fatal(err)
	}
	first := stamper.StampOf(path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	later := info.ModTime().Add(1_000_000_000)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if changed := stamper.StampOf(path); changed == first {
		t.Error("expected stamp to change with modification time")
	}
}

func TestStamperFactory(t *testing.T) {
	factory := fs.NewStamperFactory(fs.NewHasher())

	for _, kind := range []string{"", fs.StamperContent, fs.StamperTime} {
		if _, err := factory.Stamper(kind); err != nil {
			t.Errorf("unexpected error for %q: %v", kind, err)
		}
	}
	if _, err := factory.Stamper("bogus"); err == nil {
		t.Error("expected error for unknown stamper kind")
	}
}

func TestHasher_InterfaceFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.h")
	b := filepath.Join(dir, "b.h")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, []byte(p), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	hasher := fs.NewHasher()
	stamper := fs.NewContentStamper(hasher)

	if fp := hasher.InterfaceFingerprint(stamper, nil); fp.Valid {
		t.Error("expected absent fingerprint for no files")
	}

	fp1 := hasher.InterfaceFingerprint(stamper, []string{a, b})
	fp2 := hasher.InterfaceFingerprint(stamper, []string{b, a})
	if !fp1.Matches(fp2) {
		t.Error("expected fingerprint to ignore path order")
	}

	if err := os.WriteFile(b, []byte("changed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if fp3 := hasher.InterfaceFingerprint(stamper, []string{a, b}); fp3.Matches(fp1) {
		t.Error("expected fingerprint to change with file content")
	}
}
