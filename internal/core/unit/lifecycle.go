package unit

import (
	"errors"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/persist"
	"go.trai.ch/zerr"
)

// Paths locates the persisted files and target directories of the compiled and the edited
// identity of one module. Edited may be empty when the module has no edited identity.
type Paths struct {
	Compiled       string
	CompiledTarget string
	Edited         string
	EditedTarget   string
}

// CreateOptions configures Create.
type CreateOptions struct {
	Kind        Kind
	Paths       Paths
	Sources     []string
	Edited      map[string]domain.Stamp
	Mode        Mode
	Synthesizer *Synthesizer
}

// New returns the blank unit of kind bound to path. A live or persisted unit at path is reused
// and re-initialized.
func New(c *persist.Cache, stamper domain.Stamper, kind Kind, path string) *Unit {
	u := persist.Create[Unit](c, stamper, path)
	u.kind = kind
	return u
}

// Create returns a blank unit for a module that is about to be compiled. The compiled identity
// is returned when the mode asks for compilation, the edited identity otherwise. The returned
// unit records opts.Sources, preferring stamps from opts.Edited, and is marked by
// opts.Synthesizer. Read failures are never reported.
func Create(c *persist.Cache, stamper domain.Stamper, opts CreateOptions) *Unit {
	kind := opts.Kind
	if kind == nil {
		kind = DefaultKind
	}

	compiled, err := readKind(c, stamper, kind, opts.Paths.Compiled)
	if err != nil || compiled == nil {
		compiled = New(c, stamper, kind, opts.Paths.Compiled)
	}
	compiled.targetDir = opts.Paths.CompiledTarget

	u := compiled
	if opts.Paths.Edited != "" {
		edited := compiled.edited
		if edited == nil {
			edited = New(c, stamper, kind, opts.Paths.Edited)
		}
		edited.targetDir = opts.Paths.EditedTarget
		link(compiled, edited)
		if !IsDoCompile(opts.Mode) {
			u = edited
		}
	}

	u.Init()
	if opts.Synthesizer != nil {
		u.synthesizer = opts.Synthesizer
		opts.Synthesizer.MarkSynthesized(u)
	}
	for _, src := range opts.Sources {
		if stamp, ok := opts.Edited[src]; ok {
			u.AddSourceArtifactStamp(src, stamp)
			continue
		}
		u.AddSourceArtifact(src)
	}
	return u
}

// Read returns the unit of the module at paths and whether it is consistent. The compiled
// identity is preferred. A consistent edited identity is lifted into the compiled identity when
// the mode asks for compilation. Read returns a nil unit when nothing readable is persisted,
// and an error when a persisted unit cannot be decoded.
func Read(c *persist.Cache, stamper domain.Stamper, kind Kind, paths Paths, edited map[string]domain.Stamp, mode Mode) (*Unit, bool, error) {
	if kind == nil {
		kind = DefaultKind
	}

	compiled, err := readKind(c, stamper, kind, paths.Compiled)
	if err != nil {
		return nil, false, err
	}
	if compiled != nil && compiled.IsConsistent(edited, mode) {
		return compiled, true, nil
	}

	var editedUnit *Unit
	switch {
	case compiled != nil && compiled.edited != nil:
		editedUnit = compiled.edited
	case paths.Edited != "":
		if editedUnit, err = readKind(c, stamper, kind, paths.Edited); err != nil {
			return nil, false, err
		}
	}

	doCompile := IsDoCompile(mode)
	if editedUnit != nil && editedUnit.IsConsistent(edited, mode) {
		if !doCompile {
			return editedUnit, true, nil
		}
		if editedUnit.compiled == nil {
			if compiled == nil {
				compiled = New(c, stamper, kind, paths.Compiled)
			}
			compiled.targetDir = paths.CompiledTarget
			link(compiled, editedUnit)
		}
		if err := LiftEditedToCompiled(editedUnit); err != nil {
			return nil, false, err
		}
		return editedUnit.compiled, true, nil
	}

	if doCompile || editedUnit == nil {
		return compiled, false, nil
	}
	return editedUnit, false, nil
}

func readKind(c *persist.Cache, stamper domain.Stamper, kind Kind, path string) (*Unit, error) {
	u, err := persist.Read[Unit](c, stamper, path)
	switch {
	case errors.Is(err, domain.ErrEntityNotFound), errors.Is(err, domain.ErrSchemaMismatch):
		return nil, nil
	case err != nil:
		return nil, err
	case u.Kind().Tag() != kind.Tag():
		return nil, nil
	}
	u.kind = kind
	return u, nil
}

func link(compiled, edited *Unit) {
	compiled.compiled = nil
	compiled.edited = edited
	edited.edited = nil
	edited.compiled = compiled
}

// Write persists the unit at its persistent path.
func (u *Unit) Write() error {
	if u.PersistentPath() == "" {
		return zerr.With(zerr.Wrap(domain.ErrUnitNotPersistable, "write"), "unit", u.seq)
	}
	return persist.Write(u, u.PersistentPath())
}

// LiftEditedToCompiled copies every edited unit reachable from u into its compiled sibling and
// writes the compiled units. Units without a compiled sibling are skipped. Edges are classified
// again on the compiled side, acyclic ones first.
func LiftEditedToCompiled(u *Unit) error {
	start := u
	if u.edited != nil {
		start = u.edited
	}

	var lifted []*Unit
	err := Visit[error](start, VisitorFuncs[error]{
		VisitFn: func(mod *Unit, _ Mode) error {
			if mod.compiled == nil {
				return nil
			}
			target := mod.compiled
			target.Init()
			lifted = append(lifted, mod)
			return mod.copyContentTo(target)
		},
		CombineFn: func(acc, result error) error { return errors.Join(acc, result) },
		CancelFn:  func(acc error) bool { return acc != nil },
	}, nil, true)
	if err != nil {
		return err
	}

	for _, mod := range lifted {
		for dep, fp := range mod.circularDeps {
			if dep.compiled == nil {
				mod.compiled.addDependency(dep, fp)
				continue
			}
			mod.compiled.AddModuleDependency(dep.compiled)
		}
	}
	for _, mod := range lifted {
		if err := mod.compiled.Write(); err != nil {
			return err
		}
	}
	return nil
}

// copyContentTo copies everything but the circular edges of u into target.
func (u *Unit) copyContentTo(target *Unit) error {
	target.kind = u.kind
	target.interfaceHash = u.interfaceHash
	target.synthesizer = u.synthesizer
	maps.Copy(target.sourceArtifacts, u.sourceArtifacts)
	maps.Copy(target.attributes, u.attributes)

	for dep, fp := range u.moduleDeps {
		if dep.compiled == nil {
			target.addDependency(dep, fp)
			continue
		}
		target.AddModuleDependency(dep.compiled)
	}

	for path := range u.externalFiles {
		copied, err := relocate(u.targetDir, target.targetDir, path)
		if err != nil {
			return err
		}
		target.AddExternalFileDependency(copied)
	}
	for path := range u.generatedFiles {
		copied, err := relocate(u.targetDir, target.targetDir, path)
		if err != nil {
			return err
		}
		target.AddGeneratedFile(copied)
	}
	return nil
}

// relocate copies path into to when it lies below from and returns the new location. Other
// paths are returned unchanged.
func relocate(from, to, path string) (string, error) {
	if from == "" || to == "" || from == to {
		return path, nil
	}
	rel, err := filepath.Rel(from, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path, nil
	}

	dst := filepath.Join(to, rel)
	src, err := os.Open(path) //nolint:gosec // path was recorded by the unit
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		return "", zerr.With(zerr.Wrap(err, "failed to open generated file"), "path", path)
	}
	defer func() {
		_ = src.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(dst))
	}
	out, err := os.Create(dst) //nolint:gosec // dst is below the target directory
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return "", zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err := out.Close(); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to close file"), "path", dst)
	}
	return dst, nil
}
