// Package extractor derives unit dependencies from the project manifest.
package extractor

import (
	"cmp"
	"slices"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/zerr"
)

var _ ports.DependencyExtractor = (*Extractor)(nil)

// Extractor implements ports.DependencyExtractor. A unit depends on the units named in
// depends_on and in synthesized_from of its declaration.
type Extractor struct {
	manifest *domain.Manifest
	units    map[string]*unit.Unit
}

// New creates an Extractor resolving unit names through units.
func New(manifest *domain.Manifest, units map[string]*unit.Unit) *Extractor {
	return &Extractor{manifest: manifest, units: units}
}

// ExtractDependencies returns the units u currently depends on, sorted by name.
func (e *Extractor) ExtractDependencies(u *unit.Unit) ([]*unit.Unit, error) {
	spec, err := e.manifest.Unit(u.Name())
	if err != nil {
		return nil, err
	}

	names := slices.Concat(spec.Dependencies, spec.SynthesizedFrom.Units)
	deps := make([]*unit.Unit, 0, len(names))
	for _, name := range names {
		dep, ok := e.units[name.String()]
		if !ok {
			err := zerr.With(zerr.Wrap(domain.ErrDependencyNotFound, "extract dependencies"), "unit", u.Name())
			return nil, zerr.With(err, "dependency", name.String())
		}
		if !slices.Contains(deps, dep) {
			deps = append(deps, dep)
		}
	}
	slices.SortFunc(deps, func(a, b *unit.Unit) int { return cmp.Compare(a.Name(), b.Name()) })
	return deps, nil
}
