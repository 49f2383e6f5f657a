package ports

import (
	"context"

	"go.trai.ch/cleardep/internal/core/unit"
)

// Compiler compiles the units of one build task.
//
//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile compiles units together. On success the units hold their new recorded state and
	// are persisted.
	Compile(ctx context.Context, units []*unit.Unit) error
}
