package app

import (
	"path/filepath"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/persist"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/zerr"
)

// unitExt is the extension of persisted unit files.
const unitExt = ".dep"

// Project is a manifest together with the live units of its declarations.
type Project struct {
	Manifest *domain.Manifest

	stamper domain.Stamper
	cache   *persist.Cache
	mode    unit.Mode
	units   map[string]*unit.Unit
}

// compileMode is the mode of a command line build: compiled identities are of interest.
var compileMode unit.Mode = unit.DoCompileMode{DoCompile: true}

// materialize reads the persisted unit of every declaration in m. Declarations that were never
// built, or whose persisted state cannot be read, get a blank unit.
func materialize(m *domain.Manifest, stamper domain.Stamper, cache *persist.Cache, logger ports.Logger) (*Project, error) {
	unit.RegisterKind(unit.ToolVersioned(m.ToolVersion))

	p := &Project{
		Manifest: m,
		stamper:  stamper,
		cache:    cache,
		mode:     compileMode,
		units:    make(map[string]*unit.Unit, m.Len()),
	}

	for spec := range m.Units() {
		name := spec.Name.String()
		kind, err := unit.LookupKind(spec.Kind)
		if err != nil {
			return nil, zerr.With(err, "unit", name)
		}

		paths := p.paths(name)
		u, _, err := unit.Read(cache, stamper, kind, paths, nil, p.mode)
		if err != nil {
			logger.Warn("ignoring unreadable state of " + name + ": " + err.Error())
			u = nil
		}
		if u == nil || u.PersistentPath() != paths.Compiled {
			u = unit.New(cache, stamper, kind, paths.Compiled)
			u.SetTargetDir(paths.CompiledTarget)
		}
		p.units[name] = u
	}
	return p, nil
}

func (p *Project) stateDir() string {
	if filepath.IsAbs(p.Manifest.StateDir) {
		return p.Manifest.StateDir
	}
	return filepath.Join(p.Manifest.Root, p.Manifest.StateDir)
}

func (p *Project) paths(name string) unit.Paths {
	state := p.stateDir()
	return unit.Paths{
		Compiled:       filepath.Join(state, name+unitExt),
		CompiledTarget: p.Manifest.Root,
		Edited:         filepath.Join(state, "edited", name+unitExt),
		EditedTarget:   filepath.Join(state, "edited", name),
	}
}

// Unit returns the live unit of the declaration name.
func (p *Project) Unit(name string) (*unit.Unit, error) {
	u, ok := p.units[name]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnitNotFound, "lookup"), "unit", name)
	}
	return u, nil
}

// Units returns the live units sorted by declaration name.
func (p *Project) Units() []*unit.Unit {
	names := p.Manifest.Names()
	out := make([]*unit.Unit, 0, len(names))
	for _, name := range names {
		out = append(out, p.units[name])
	}
	return out
}

// Roots returns the units named by targets, or every unit when targets is empty.
func (p *Project) Roots(targets []string) ([]*unit.Unit, error) {
	if len(targets) == 0 {
		return p.Units(), nil
	}
	roots := make([]*unit.Unit, 0, len(targets))
	for _, name := range targets {
		u, err := p.Unit(name)
		if err != nil {
			return nil, err
		}
		roots = append(roots, u)
	}
	return roots, nil
}

func (p *Project) abs(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(p.Manifest.Root, path)
		}
		out = append(out, path)
	}
	return out
}
