package fs

import (
	"os"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/zerr"
)

// Stamper kinds accepted by NewStamper.
const (
	StamperTime    = "time"
	StamperContent = "content"
)

var (
	_ domain.Stamper       = (*TimeStamper)(nil)
	_ domain.Stamper       = (*ContentStamper)(nil)
	_ ports.StamperFactory = (*StamperFactory)(nil)
)

// TimeStamper stamps files by their modification time.
type TimeStamper struct{}

// StampOf returns the modification time of path in nanoseconds.
func (TimeStamper) StampOf(path string) domain.Stamp {
	info, err := os.Stat(path)
	if err != nil {
		return domain.AbsentStamp
	}
	return present(info.ModTime().UnixNano())
}

// ContentStamper stamps files by the hash of their content.
type ContentStamper struct {
	hasher *Hasher
}

// NewContentStamper creates a ContentStamper.
func NewContentStamper(hasher *Hasher) *ContentStamper {
	return &ContentStamper{hasher: hasher}
}

// StampOf returns the XXHash of the content of path.
func (s *ContentStamper) StampOf(path string) domain.Stamp {
	sum, err := s.hasher.ComputeFileHash(path)
	if err != nil {
		return domain.AbsentStamp
	}
	return present(int64(sum)) //nolint:gosec // reinterpretation is intended
}

// present maps a stamp of an existing file away from AbsentStamp.
func present(v int64) domain.Stamp {
	if domain.Stamp(v) == domain.AbsentStamp {
		return domain.AbsentStamp + 1
	}
	return domain.Stamp(v)
}

// StamperFactory creates stampers by kind.
type StamperFactory struct {
	hasher *Hasher
}

// NewStamperFactory creates a StamperFactory.
func NewStamperFactory(hasher *Hasher) *StamperFactory {
	return &StamperFactory{hasher: hasher}
}

// Stamper returns the stamper for kind. The empty kind selects the content stamper.
func (f *StamperFactory) Stamper(kind string) (domain.Stamper, error) {
	switch kind {
	case StamperTime:
		return TimeStamper{}, nil
	case StamperContent, "":
		return NewContentStamper(f.hasher), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unknown stamper"), "stamper", kind)
	}
}
