package app

import (
	"context"
	"strings"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/core/unit"
	"go.trai.ch/zerr"
)

// unitCompiler runs the declared command of each unit and records the resulting state.
type unitCompiler struct {
	project   *Project
	executor  ports.Executor
	resolver  ports.SourceResolver
	hasher    ports.Hasher
	verifier  ports.Verifier
	extractor ports.DependencyExtractor
	// terminal runs commands under a pseudo terminal.
	terminal bool
}

// Compile implements ports.Compiler. The units of one task are compiled together: every command
// runs first, then every unit is re-recorded, then dependencies are re-added so that edges
// inside the task see the new interfaces, and finally every unit is written.
func (c *unitCompiler) Compile(ctx context.Context, units []*unit.Unit) error {
	specs := make([]domain.UnitSpec, 0, len(units))
	for _, u := range units {
		spec, err := c.project.Manifest.Unit(u.Name())
		if err != nil {
			return err
		}
		if err := c.run(ctx, &spec); err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	recorded := make([]*unit.Unit, 0, len(units))
	for i, u := range units {
		r, err := c.record(u, &specs[i])
		if err != nil {
			return err
		}
		recorded = append(recorded, r)
	}

	for _, u := range recorded {
		deps, err := c.extractor.ExtractDependencies(u)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			u.AddModuleDependency(dep)
		}
	}

	for _, u := range recorded {
		if err := u.Write(); err != nil {
			return zerr.With(err, "unit", u.Name())
		}
	}
	return nil
}

func (c *unitCompiler) run(ctx context.Context, spec *domain.UnitSpec) error {
	name := spec.Name.String()
	if len(spec.Command) > 0 {
		cmd := &domain.Command{
			Args:        spec.Command,
			WorkingDir:  c.project.Manifest.Root,
			Environment: spec.Environment,
			Terminal:    c.terminal,
		}
		if vertex, ok := ports.VertexFromContext(ctx); ok {
			cmd.Stdout = vertex.Stdout()
			cmd.Stderr = vertex.Stderr()
		}
		if err := c.executor.Execute(ctx, cmd); err != nil {
			return zerr.With(err, "unit", name)
		}
	}

	missing, err := c.verifier.Missing(c.project.abs(spec.Generated))
	if err != nil {
		return zerr.With(err, "unit", name)
	}
	if len(missing) > 0 {
		err := zerr.With(zerr.Wrap(domain.ErrBuildFailed, "generated files missing"), "unit", name)
		return zerr.With(err, "missing", strings.Join(missing, ", "))
	}
	return nil
}

// record re-initializes u and records its sources, files, synthesizer and interface.
func (c *unitCompiler) record(u *unit.Unit, spec *domain.UnitSpec) (*unit.Unit, error) {
	p := c.project
	name := spec.Name.String()

	sources, err := c.resolver.ResolveSources(spec.Sources, p.Manifest.Root)
	if err != nil {
		return nil, zerr.With(err, "unit", name)
	}
	kind, err := unit.LookupKind(spec.Kind)
	if err != nil {
		return nil, zerr.With(err, "unit", name)
	}

	var synth *unit.Synthesizer
	if len(spec.SynthesizedFrom.Units) > 0 || len(spec.SynthesizedFrom.Files) > 0 {
		generators := make([]*unit.Unit, 0, len(spec.SynthesizedFrom.Units))
		for _, g := range spec.SynthesizedFrom.Units {
			gen, err := p.Unit(g.String())
			if err != nil {
				return nil, zerr.With(err, "synthesized", name)
			}
			generators = append(generators, gen)
		}
		synth = unit.NewSynthesizerStamped(p.stamper, generators, p.abs(spec.SynthesizedFrom.Files))
	}

	r := unit.Create(p.cache, p.stamper, unit.CreateOptions{
		Kind:        kind,
		Paths:       p.paths(name),
		Sources:     sources,
		Mode:        p.mode,
		Synthesizer: synth,
	})
	if r != u {
		err := zerr.With(zerr.Wrap(domain.ErrScheduleInvariant, "persisted unit changed during build"), "unit", name)
		return nil, zerr.With(err, "path", u.PersistentPath())
	}

	for _, path := range p.abs(spec.External) {
		r.AddExternalFileDependency(path)
	}
	generated := p.abs(spec.Generated)
	for _, path := range generated {
		r.AddGeneratedFile(path)
	}
	r.SetInterface(c.hasher.InterfaceFingerprint(p.stamper, p.abs(spec.Interface)))
	if vk, ok := kind.(unit.VersionedKind); ok {
		r.SetAttribute(vk.Attribute, vk.Version)
	}
	return r, nil
}
