package driver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cleardep/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cleardep/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/cleardep/internal/core/ports"
)

// NodeID is the unique identifier for the driver Graft node.
const NodeID graft.ID = "engine.driver"

func init() {
	graft.Register(graft.Node[*Driver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Driver, error) {
			rec, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(rec, log), nil
		},
	})
}
