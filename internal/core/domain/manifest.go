// Package domain contains the value types shared by the cleardep core and its adapters.
package domain

import (
	"cmp"
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// DefaultStateDir is the directory, relative to the project root, that holds persisted units.
const DefaultStateDir = ".cleardep"

// Synthesis names the units and files a synthesized unit is derived from.
type Synthesis struct {
	Units []InternedString
	Files []string
}

// UnitSpec is the declaration of one compilation unit in the project manifest.
type UnitSpec struct {
	Name            InternedString
	Kind            string
	Sources         []string
	Dependencies    []InternedString
	External        []string
	Generated       []string
	Interface       []string
	Command         []string
	Environment     map[string]string
	SynthesizedFrom Synthesis
}

// Manifest is the validated set of unit declarations of a project.
type Manifest struct {
	Root        string
	StateDir    string
	Stamper     string
	ToolVersion string
	Mode        ScheduleMode

	units map[InternedString]UnitSpec
	order []InternedString
}

// NewManifest creates an empty manifest rooted at root.
func NewManifest(root string) *Manifest {
	return &Manifest{
		Root:     root,
		StateDir: DefaultStateDir,
		units:    make(map[InternedString]UnitSpec),
	}
}

// AddUnit adds a unit declaration.
// It returns an error if a unit with the same name already exists.
func (m *Manifest) AddUnit(u *UnitSpec) error {
	if _, exists := m.units[u.Name]; exists {
		return zerr.With(zerr.Wrap(ErrUnitAlreadyExists, "add unit"), "unit", u.Name.String())
	}
	m.units[u.Name] = *u
	m.order = nil
	return nil
}

// Validate checks that every referenced unit is declared and that every unit names at least
// one source. Cycles between units are legal and are not reported.
func (m *Manifest) Validate() error {
	order := make([]InternedString, 0, len(m.units))
	for name := range m.units {
		order = append(order, name)
	}
	slices.SortFunc(order, func(a, b InternedString) int {
		return cmp.Compare(a.String(), b.String())
	})

	for _, name := range order {
		u := m.units[name]
		if len(u.Sources) == 0 {
			return zerr.With(zerr.Wrap(ErrInvalidConfig, "unit has no sources"), "unit", name.String())
		}
		for _, dep := range slices.Concat(u.Dependencies, u.SynthesizedFrom.Units) {
			if dep == name {
				return zerr.With(zerr.Wrap(ErrInvalidConfig, "unit depends on itself"), "unit", name.String())
			}
			if _, ok := m.units[dep]; !ok {
				err := zerr.With(zerr.Wrap(ErrMissingDependency, "validate"), "unit", name.String())
				return zerr.With(err, "dependency", dep.String())
			}
		}
	}

	m.order = order
	return nil
}

// Unit returns the declaration with the given name.
func (m *Manifest) Unit(name string) (UnitSpec, error) {
	u, ok := m.units[NewInternedString(name)]
	if !ok {
		return UnitSpec{}, zerr.With(zerr.Wrap(ErrUnitNotFound, "lookup"), "unit", name)
	}
	return u, nil
}

// Len returns the number of declared units.
func (m *Manifest) Len() int {
	return len(m.units)
}

// Units returns an iterator over the declarations sorted by name.
// It assumes Validate() has been called and returned nil.
func (m *Manifest) Units() iter.Seq[UnitSpec] {
	return func(yield func(UnitSpec) bool) {
		for _, name := range m.order {
			if !yield(m.units[name]) {
				return
			}
		}
	}
}

// Names returns the declared unit names sorted.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.order))
	for _, name := range m.order {
		names = append(names, name.String())
	}
	return names
}
