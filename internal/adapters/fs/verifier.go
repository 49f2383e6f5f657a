package fs

import (
	"os"

	"go.trai.ch/zerr"
)

// Verifier provides functionality to verify the existence of files.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Missing returns the paths that do not exist.
func (v *Verifier) Missing(paths []string) ([]string, error) {
	var missing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, path)
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
		}
	}
	return missing, nil
}
