package unit

import (
	"sort"
	"sync"

	"go.trai.ch/cleardep/internal/core/domain"
	"go.trai.ch/zerr"
)

// Kind tags a unit with the subtype it was created as. The tag is persisted, and a kind can
// extend shallow consistency with its own check.
type Kind interface {
	Tag() string
	ConsistentExtend(u *Unit, mode Mode) bool
}

// BasicKind is a kind without extra consistency conditions.
type BasicKind string

// Tag implements Kind.
func (k BasicKind) Tag() string { return string(k) }

// ConsistentExtend implements Kind.
func (BasicKind) ConsistentExtend(*Unit, Mode) bool { return true }

// DefaultKind is the kind of plain compilation units.
const DefaultKind BasicKind = "unit"

// VersionedKind is consistent only while the attribute named Attribute equals Version.
type VersionedKind struct {
	Name      string
	Attribute string
	Version   string
}

// Tag implements Kind.
func (k VersionedKind) Tag() string { return k.Name }

// ConsistentExtend implements Kind.
func (k VersionedKind) ConsistentExtend(u *Unit, _ Mode) bool {
	v, ok := u.Attribute(k.Attribute)
	return ok && v == k.Version
}

// ToolVersionAttribute is the attribute compared by the built-in versioned kind.
const ToolVersionAttribute = "tool.version"

// ToolVersioned returns the built-in "versioned" kind pinned to version. Registering it again
// with the project's tool version makes every unit built by another version inconsistent.
func ToolVersioned(version string) VersionedKind {
	return VersionedKind{Name: "versioned", Attribute: ToolVersionAttribute, Version: version}
}

var kinds = struct {
	sync.RWMutex
	m map[string]Kind
}{m: map[string]Kind{
	DefaultKind.Tag():       DefaultKind,
	ToolVersioned("").Tag(): ToolVersioned(""),
}}

// RegisterKind makes k available to the decoder. A later registration replaces an earlier one
// with the same tag.
func RegisterKind(k Kind) {
	kinds.Lock()
	defer kinds.Unlock()
	kinds.m[k.Tag()] = k
}

// LookupKind returns the kind registered under tag.
func LookupKind(tag string) (Kind, error) {
	kinds.RLock()
	defer kinds.RUnlock()
	if tag == "" {
		return DefaultKind, nil
	}
	k, ok := kinds.m[tag]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownUnitKind, "lookup kind"), "kind", tag)
	}
	return k, nil
}

// RegisteredKinds returns the registered tags, sorted.
func RegisteredKinds() []string {
	kinds.RLock()
	defer kinds.RUnlock()
	tags := make([]string, 0, len(kinds.m))
	for tag := range kinds.m {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
