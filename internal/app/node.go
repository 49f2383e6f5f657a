package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cleardep/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/cleardep/internal/core/ports"
	"go.trai.ch/cleardep/internal/engine/driver"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.StamperNodeID,
			fs.ResolverNodeID,
			fs.HasherNodeID,
			fs.VerifierNodeID,
			shell.NodeID,
			watcher.NodeID,
			logger.NodeID,
			driver.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			rec, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(app, log, rec), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	stampers, err := graft.Dep[ports.StamperFactory](ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := graft.Dep[ports.SourceResolver](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[*fs.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	verifier, err := graft.Dep[ports.Verifier](ctx)
	if err != nil {
		return nil, err
	}
	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	drv, err := graft.Dep[*driver.Driver](ctx)
	if err != nil {
		return nil, err
	}

	return New(&Dependencies{
		ConfigLoader: loader,
		Stampers:     stampers,
		Resolver:     resolver,
		Hasher:       hasher,
		Verifier:     verifier,
		Executor:     executor,
		Watcher:      w,
		Logger:       log,
		Driver:       drv,
	}), nil
}
