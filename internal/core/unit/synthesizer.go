package unit

import (
	"maps"
	"slices"

	"go.trai.ch/cleardep/internal/core/domain"
)

// Synthesizer marks a unit as derived from other units and files rather than written by hand.
type Synthesizer struct {
	generators map[*Unit]struct{}
	files      map[string]domain.Stamp
}

// NewSynthesizer returns a synthesizer over generator units and files with recorded stamps.
func NewSynthesizer(generators []*Unit, files map[string]domain.Stamp) *Synthesizer {
	s := &Synthesizer{
		generators: make(map[*Unit]struct{}, len(generators)),
		files:      make(map[string]domain.Stamp, len(files)),
	}
	for _, g := range generators {
		s.generators[g] = struct{}{}
	}
	maps.Copy(s.files, files)
	return s
}

// NewSynthesizerStamped returns a synthesizer that records the current stamps of files.
func NewSynthesizerStamped(stamper domain.Stamper, generators []*Unit, files []string) *Synthesizer {
	stamps := make(map[string]domain.Stamp, len(files))
	for _, f := range files {
		stamps[f] = stamper.StampOf(f)
	}
	return NewSynthesizer(generators, stamps)
}

// Generators returns the units the synthesized unit was derived from.
func (s *Synthesizer) Generators() []*Unit {
	return sortedUnits(maps.Keys(s.generators))
}

// Files returns the files the synthesized unit was derived from, sorted.
func (s *Synthesizer) Files() []string {
	return slices.Sorted(maps.Keys(s.files))
}

// MarkSynthesized adds an edge from u to every generator and records every file as an external
// dependency of u.
func (s *Synthesizer) MarkSynthesized(u *Unit) {
	for _, g := range s.Generators() {
		u.AddModuleDependency(g)
	}
	for path, stamp := range s.files {
		u.AddExternalFileDependencyStamp(path, stamp)
	}
}

// IsConsistent reports whether every file still has the stamp recorded for it.
func (s *Synthesizer) IsConsistent(stamper domain.Stamper) bool {
	for path, stamp := range s.files {
		if stamper.StampOf(path) != stamp {
			return false
		}
	}
	return true
}
