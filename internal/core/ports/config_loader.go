package ports

import "go.trai.ch/cleardep/internal/core/domain"

// ConfigLoader defines the interface for loading the project manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the manifest for the given working directory and returns it validated.
	Load(cwd string) (*domain.Manifest, error)
}
