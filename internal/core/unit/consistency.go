package unit

import (
	"go.trai.ch/cleardep/internal/core/domain"
)

// IsConsistentWithSourceArtifacts reports whether every recorded source file matches either
// its stamp in edited or its current stamp on disk. A unit without sources is inconsistent.
func (u *Unit) IsConsistentWithSourceArtifacts(edited map[string]domain.Stamp) bool {
	if len(u.sourceArtifacts) == 0 {
		return false
	}
	for path, stamp := range u.sourceArtifacts {
		if override, ok := edited[path]; ok {
			if override != stamp {
				return false
			}
			continue
		}
		current := u.Stamper().StampOf(path)
		if current == domain.AbsentStamp || current != stamp {
			return false
		}
	}
	return true
}

// IsConsistentShallow checks the unit itself but none of its dependencies. The files a
// synthesized unit was derived from count as part of the unit.
func (u *Unit) IsConsistentShallow(edited map[string]domain.Stamp, mode Mode) bool {
	if u.HasPersistentVersionChanged() {
		return false
	}
	if !u.IsConsistentWithSourceArtifacts(edited) {
		return false
	}
	if !u.stampsUnchanged(u.generatedFiles) || !u.stampsUnchanged(u.externalFiles) {
		return false
	}
	if u.synthesizer != nil && !u.synthesizer.IsConsistent(u.Stamper()) {
		return false
	}
	return u.Kind().ConsistentExtend(u, mode)
}

func (u *Unit) stampsUnchanged(files map[string]domain.Stamp) bool {
	for path, stamp := range files {
		if u.Stamper().StampOf(path) != stamp {
			return false
		}
	}
	return true
}

// IsConsistentToDependencyInterfaces reports whether every dependency still has the interface
// fingerprint recorded on the edge to it.
func (u *Unit) IsConsistentToDependencyInterfaces() bool {
	for dep, recorded := range concatMaps(u.moduleDeps, u.circularDeps) {
		if !recorded.Matches(dep.interfaceHash) {
			return false
		}
	}
	return true
}

// IsConsistent checks every unit reachable from u, including u, with IsConsistentShallow.
func (u *Unit) IsConsistent(edited map[string]domain.Stamp, mode Mode) bool {
	return Visit[bool](u, VisitorFuncs[bool]{
		InitValue: true,
		VisitFn: func(m *Unit, mode Mode) bool {
			return m.IsConsistentShallow(edited, mode)
		},
		CombineFn: func(acc, result bool) bool { return acc && result },
		CancelFn:  func(acc bool) bool { return !acc },
	}, mode, false)
}

func concatMaps[K comparable, V any](a, b map[K]V) func(yield func(K, V) bool) {
	return func(yield func(K, V) bool) {
		for k, v := range a {
			if !yield(k, v) {
				return
			}
		}
		for k, v := range b {
			if !yield(k, v) {
				return
			}
		}
	}
}
