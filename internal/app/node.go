package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/normcache/internal/adapters/clock"        //nolint:depguard // Wired in app layer
	"go.trai.ch/normcache/internal/adapters/config"       //nolint:depguard // Wired in app layer
	"go.trai.ch/normcache/internal/adapters/logger"       //nolint:depguard // Wired in app layer
	"go.trai.ch/normcache/internal/adapters/storefactory" //nolint:depguard // Wired in app layer
	"go.trai.ch/normcache/internal/adapters/telemetry"    //nolint:depguard // Wired in app layer
	"go.trai.ch/normcache/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds what the CLI needs from the dependency graph.
type Components struct {
	App    *App
	Logger ports.Logger
	// Shutdown flushes the tracer provider.
	Shutdown func(context.Context) error
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			storefactory.NodeID,
			logger.NodeID,
			telemetry.NodeID,
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
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	factory, err := graft.Dep[ports.StoreFactory](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	provider, err := graft.Dep[*telemetry.Provider](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, factory, log, clock.System{}).WithTracing(provider), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	provider, err := graft.Dep[*telemetry.Provider](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:      app,
		Logger:   log,
		Shutdown: provider.Shutdown,
	}, nil
}
