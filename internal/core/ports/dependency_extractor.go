package ports

import "go.trai.ch/cleardep/internal/core/unit"

// DependencyExtractor reports the units a unit currently depends on.
//
//go:generate go run go.uber.org/mock/mockgen -source=dependency_extractor.go -destination=mocks/mock_dependency_extractor.go -package=mocks
type DependencyExtractor interface {
	ExtractDependencies(u *unit.Unit) ([]*unit.Unit, error)
}
