// Package unit models compilation units: persisted graph nodes that record the source files a
// module was compiled from, the files it generated, and the units it depends on.
//
// Dependency edges are split into acyclic edges and circular edges. An edge is circular when
// adding it to the acyclic subgraph would have closed a cycle, so the acyclic subgraph is a DAG
// at all times.
package unit

import (
	"cmp"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/cleardep/internal/core/persist"
	"go.trai.ch/zerr"
)

var unitSeq atomic.Uint64

// Unit is a compilation unit.
type Unit struct {
	persist.Base

	seq  uint64
	kind Kind

	// compiled is set on an edited unit, edited on a compiled unit.
	compiled *Unit
	edited   *Unit

	synthesizer   *Synthesizer
	interfaceHash domain.Fingerprint
	targetDir     string

	sourceArtifacts map[string]domain.Stamp
	moduleDeps      map[*Unit]domain.Fingerprint
	circularDeps    map[*Unit]domain.Fingerprint
	externalFiles   map[string]domain.Stamp
	generatedFiles  map[string]domain.Stamp
	attributes      map[string]string
}

// Init resets the recorded content of the unit. Its identity, kind, target directory and
// sibling link are kept.
func (u *Unit) Init() {
	if u.seq == 0 {
		u.seq = unitSeq.Add(1)
	}
	u.synthesizer = nil
	u.interfaceHash = domain.Fingerprint{}
	u.sourceArtifacts = make(map[string]domain.Stamp)
	u.moduleDeps = make(map[*Unit]domain.Fingerprint)
	u.circularDeps = make(map[*Unit]domain.Fingerprint)
	u.externalFiles = make(map[string]domain.Stamp)
	u.generatedFiles = make(map[string]domain.Stamp)
	u.attributes = make(map[string]string)
}

// Name returns the file name of the persistent path without its extension.
func (u *Unit) Name() string {
	base := filepath.Base(u.PersistentPath())
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (u *Unit) String() string {
	return u.Name()
}

// Kind returns the unit's kind.
func (u *Unit) Kind() Kind {
	if u.kind == nil {
		return DefaultKind
	}
	return u.kind
}

// TargetDir returns the directory the unit's generated files are written to.
func (u *Unit) TargetDir() string { return u.targetDir }

// SetTargetDir sets the directory the unit's generated files are written to.
func (u *Unit) SetTargetDir(dir string) { u.targetDir = dir }

// Compiled returns the compiled sibling of an edited unit.
func (u *Unit) Compiled() *Unit { return u.compiled }

// Edited returns the edited sibling of a compiled unit.
func (u *Unit) Edited() *Unit { return u.edited }

// Synthesizer returns the synthesizer the unit was derived by, or nil.
func (u *Unit) Synthesizer() *Synthesizer { return u.synthesizer }

// InterfaceHash returns the fingerprint of the unit's externally visible result.
func (u *Unit) InterfaceHash() domain.Fingerprint { return u.interfaceHash }

// SetInterfaceHash records the fingerprint of the unit's externally visible result.
func (u *Unit) SetInterfaceHash(hash int64) { u.interfaceHash = domain.NewFingerprint(hash) }

// SetInterface records fp as the unit's interface fingerprint. An absent fp clears it.
func (u *Unit) SetInterface(fp domain.Fingerprint) { u.interfaceHash = fp }

// Attribute returns a kind-specific attribute.
func (u *Unit) Attribute(key string) (string, bool) {
	v, ok := u.attributes[key]
	return v, ok
}

// SetAttribute records a kind-specific attribute.
func (u *Unit) SetAttribute(key, value string) { u.attributes[key] = value }

// AddSourceArtifact records path with its current stamp.
func (u *Unit) AddSourceArtifact(path string) {
	u.sourceArtifacts[path] = u.Stamper().StampOf(path)
}

// AddSourceArtifactStamp records path with the given stamp.
func (u *Unit) AddSourceArtifactStamp(path string, stamp domain.Stamp) {
	u.sourceArtifacts[path] = stamp
}

// AddExternalFileDependency records path with its current stamp.
func (u *Unit) AddExternalFileDependency(path string) {
	u.externalFiles[path] = u.Stamper().StampOf(path)
}

// AddExternalFileDependencyStamp records path with the given stamp.
func (u *Unit) AddExternalFileDependencyStamp(path string, stamp domain.Stamp) {
	u.externalFiles[path] = stamp
}

// AddGeneratedFile records path with its current stamp.
func (u *Unit) AddGeneratedFile(path string) {
	u.generatedFiles[path] = u.Stamper().StampOf(path)
}

// SourceArtifacts returns the recorded source files, sorted.
func (u *Unit) SourceArtifacts() []string { return slices.Sorted(maps.Keys(u.sourceArtifacts)) }

// ExternalFileDependencies returns the recorded external files, sorted.
func (u *Unit) ExternalFileDependencies() []string { return slices.Sorted(maps.Keys(u.externalFiles)) }

// GeneratedFiles returns the recorded generated files, sorted.
func (u *Unit) GeneratedFiles() []string { return slices.Sorted(maps.Keys(u.generatedFiles)) }

// ModuleDependencies returns the acyclic dependencies.
func (u *Unit) ModuleDependencies() []*Unit { return sortedUnits(maps.Keys(u.moduleDeps)) }

// CircularModuleDependencies returns the circular dependencies.
func (u *Unit) CircularModuleDependencies() []*Unit { return sortedUnits(maps.Keys(u.circularDeps)) }

// Dependencies returns the acyclic dependencies followed by the circular ones.
func (u *Unit) Dependencies() []*Unit {
	return append(u.ModuleDependencies(), u.CircularModuleDependencies()...)
}

// RecordedInterface returns the interface fingerprint of dep recorded with the edge to it.
func (u *Unit) RecordedInterface(dep *Unit) (domain.Fingerprint, bool) {
	if fp, ok := u.moduleDeps[dep]; ok {
		return fp, true
	}
	fp, ok := u.circularDeps[dep]
	return fp, ok
}

// AddModuleDependency adds an edge to mod. The edge is recorded as circular when mod already
// reaches u over acyclic edges, and as acyclic otherwise. An edge to u itself is ignored.
func (u *Unit) AddModuleDependency(mod *Unit) {
	u.addDependency(mod, mod.interfaceHash)
}

// addDependency classifies the edge to mod and records fp as the interface seen through it.
func (u *Unit) addDependency(mod *Unit, fp domain.Fingerprint) {
	if mod == u {
		return
	}
	delete(u.moduleDeps, mod)
	delete(u.circularDeps, mod)

	if mod.DependsOnTransitivelyNoncircularly(u) {
		u.circularDeps[mod] = fp
		return
	}
	u.moduleDeps[mod] = fp
}

// AddCircularModuleDependency records an edge to mod as circular without classifying it.
// The caller is expected to close the cycle; ValidateCircularEdges reports edges that do not.
//
// Deprecated: use AddModuleDependency.
func (u *Unit) AddCircularModuleDependency(mod *Unit) {
	u.addCircular(mod)
}

func (u *Unit) addCircular(mod *Unit) {
	if mod == u {
		return
	}
	delete(u.moduleDeps, mod)
	u.circularDeps[mod] = mod.interfaceHash
}

// RemoveModuleDependency removes the edge to mod, whichever kind it is.
func (u *Unit) RemoveModuleDependency(mod *Unit) {
	delete(u.moduleDeps, mod)
	delete(u.circularDeps, mod)
}

// MoveCircularToAcyclic turns the circular edge to mod into an acyclic edge.
func (u *Unit) MoveCircularToAcyclic(mod *Unit) error {
	fp, ok := u.circularDeps[mod]
	if !ok {
		return u.edgeError("circular", mod)
	}
	delete(u.circularDeps, mod)
	u.moduleDeps[mod] = fp
	return nil
}

// MoveAcyclicToCircular turns the acyclic edge to mod into a circular edge.
func (u *Unit) MoveAcyclicToCircular(mod *Unit) error {
	fp, ok := u.moduleDeps[mod]
	if !ok {
		return u.edgeError("acyclic", mod)
	}
	delete(u.moduleDeps, mod)
	u.circularDeps[mod] = fp
	return nil
}

// UpdateModuleDependencyInterface records the current interface fingerprint of mod on the edge
// to it.
func (u *Unit) UpdateModuleDependencyInterface(mod *Unit) error {
	if _, ok := u.moduleDeps[mod]; ok {
		u.moduleDeps[mod] = mod.interfaceHash
		return nil
	}
	if _, ok := u.circularDeps[mod]; ok {
		u.circularDeps[mod] = mod.interfaceHash
		return nil
	}
	return u.edgeError("any", mod)
}

func (u *Unit) edgeError(edge string, mod *Unit) error {
	err := zerr.With(zerr.Wrap(domain.ErrDependencyNotFound, "edge update"), "unit", u.Name())
	err = zerr.With(err, "dependency", mod.Name())
	return zerr.With(err, "edge", edge)
}

// DependsOn reports whether u has a direct edge to other.
func (u *Unit) DependsOn(other *Unit) bool {
	_, acyclic := u.moduleDeps[other]
	_, circular := u.circularDeps[other]
	return acyclic || circular
}

// DependsOnNoncircularly reports whether u has a direct acyclic edge to other.
func (u *Unit) DependsOnNoncircularly(other *Unit) bool {
	_, ok := u.moduleDeps[other]
	return ok
}

// DependsOnTransitively reports whether other is reachable from u over any edges.
func (u *Unit) DependsOnTransitively(other *Unit) bool {
	return u.reaches(other, false)
}

// DependsOnTransitivelyNoncircularly reports whether other is reachable from u over acyclic
// edges only.
func (u *Unit) DependsOnTransitivelyNoncircularly(other *Unit) bool {
	return u.reaches(other, true)
}

func (u *Unit) reaches(other *Unit, acyclicOnly bool) bool {
	seen := map[*Unit]bool{u: true}
	queue := []*Unit{u}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		next := maps.Keys(cur.moduleDeps)
		if !acyclicOnly {
			next = concatKeys(cur.moduleDeps, cur.circularDeps)
		}
		for dep := range next {
			if dep == other {
				return true
			}
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return false
}

// CircularFileDependencies returns the generated and external files of every unit reachable
// from u, including u, that currently exist.
func (u *Unit) CircularFileDependencies() []string {
	files := make(map[string]struct{})
	for _, mod := range FindAllUnits(u) {
		for path := range concatKeys(mod.generatedFiles, mod.externalFiles) {
			if _, err := os.Stat(path); err == nil {
				files[path] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(files))
}

// compareUnits orders units by persistent path, then by creation.
func compareUnits(a, b *Unit) int {
	if c := cmp.Compare(a.PersistentPath(), b.PersistentPath()); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

func sortedUnits(seq func(yield func(*Unit) bool)) []*Unit {
	return slices.SortedFunc(seq, compareUnits)
}

func concatKeys[K comparable, V any](a, b map[K]V) func(yield func(K) bool) {
	return func(yield func(K) bool) {
		for k := range a {
			if !yield(k) {
				return
			}
		}
		for k := range b {
			if !yield(k) {
				return
			}
		}
	}
}
