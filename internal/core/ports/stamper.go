package ports

import "go.trai.ch/cleardep/internal/core/domain"

// StamperFactory creates stampers by configured kind.
//
//go:generate go run go.uber.org/mock/mockgen -source=stamper.go -destination=mocks/mock_stamper.go -package=mocks
type StamperFactory interface {
	Stamper(kind string) (domain.Stamper, error)
}
