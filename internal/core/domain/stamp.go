package domain

// Stamp is an opaque fingerprint of a file's state.
type Stamp int64

// AbsentStamp is the stamp of a path that does not exist.
const AbsentStamp Stamp = 0

// Stamper maps a file path to its current stamp.
// Implementations must be deterministic for an unchanged file and must return AbsentStamp
// for a path that does not exist.
type Stamper interface {
	StampOf(path string) Stamp
}

// StamperFunc adapts a function to the Stamper interface.
type StamperFunc func(path string) Stamp

// StampOf calls f(path).
func (f StamperFunc) StampOf(path string) Stamp {
	return f(path)
}

// Fingerprint is an optional interface hash of a unit's externally visible result.
type Fingerprint struct {
	Hash  int64 `msgpack:"h"`
	Valid bool  `msgpack:"v"`
}

// NewFingerprint returns a present fingerprint with the given hash.
func NewFingerprint(hash int64) Fingerprint {
	return Fingerprint{Hash: hash, Valid: true}
}

// Matches reports whether both fingerprints are present and equal.
func (f Fingerprint) Matches(other Fingerprint) bool {
	return f.Valid && other.Valid && f.Hash == other.Hash
}
