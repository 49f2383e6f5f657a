package fs

import (
	"encoding/binary"
	"io"
	"os"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes content hashes and interface fingerprints.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// InterfaceFingerprint combines the stamps of the given files into one fingerprint.
// The order of paths does not matter. An empty path list yields an absent fingerprint.
func (h *Hasher) InterfaceFingerprint(stamper domain.Stamper, paths []string) domain.Fingerprint {
	if len(paths) == 0 {
		return domain.Fingerprint{}
	}

	sorted := slices.Clone(paths)
	slices.Sort(sorted)

	hasher := xxhash.New()
	for _, path := range sorted {
		_, _ = hasher.WriteString(path)
		_, _ = hasher.Write([]byte{0})
		_ = binary.Write(hasher, binary.LittleEndian, int64(stamper.StampOf(path)))
	}

	return domain.NewFingerprint(int64(hasher.Sum64())) //nolint:gosec // reinterpretation is intended
}
