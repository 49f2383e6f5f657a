package ports

import "go.trai.ch/cleardep/internal/core/domain"

// Hasher defines the interface for content hashing.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileHash returns the hash of the file's content.
	ComputeFileHash(path string) (uint64, error)

	// InterfaceFingerprint combines the stamps of paths into a single fingerprint.
	InterfaceFingerprint(stamper domain.Stamper, paths []string) domain.Fingerprint
}
