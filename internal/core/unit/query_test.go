package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/cleardep/internal/core/unit"
)

func TestFindInconsistentUnits_PullsInDependents(t *testing.T) {
	f := newFixture(t)
	a, b, c, d := f.unit("a"), f.unit("b"), f.unit("c"), f.unit("d")
	a.AddModuleDependency(b)
	b.AddModuleDependency(c)
	a.AddModuleDependency(d)

	assert.Empty(t, unit.FindInconsistentUnits(a, nil, nil))

	f.file("c.src", "changed")

	assert.Equal(t, []string{"c", "b", "a"}, names(unit.FindInconsistentUnits(a, nil, nil)))
}

func TestFindUnitsWithMatch_CycleMembersFollow(t *testing.T) {
	f := newFixture(t)
	a, b := f.unit("a"), f.unit("b")
	a.AddModuleDependency(b)
	b.AddModuleDependency(a)

	found := unit.FindUnitsWithMatch(func(u *unit.Unit) bool { return u == a }, a, true)
	assert.ElementsMatch(t, []*unit.Unit{a, b}, found)

	found = unit.FindUnitsWithMatch(func(u *unit.Unit) bool { return u == a }, a, false)
	assert.Equal(t, []*unit.Unit{a}, found)
}

func TestFindUnitsWithChangedSourceFiles(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.unit("a"), f.unit("b"), f.unit("c")
	a.AddModuleDependency(b)
	b.AddModuleDependency(c)

	f.file("b.src", "changed")

	assert.Equal(t, []string{"b"}, names(unit.FindUnitsWithChangedSourceFiles(a, nil)))
}

func TestFindAllUnits(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.unit("a"), f.unit("b"), f.unit("c")
	a.AddModuleDependency(b)
	b.AddModuleDependency(c)
	c.AddModuleDependency(a)

	assert.Equal(t, []string{"a", "b", "c"}, names(unit.FindAllUnits(a)))
}
