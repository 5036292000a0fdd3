package storefactory

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/normcache/internal/adapters/telemetry"
	"go.trai.ch/normcache/internal/core/ports"
)

// NodeID is the unique identifier for the store factory Graft node.
const NodeID graft.ID = "adapter.store_factory"

func init() {
	graft.Register(graft.Node[ports.StoreFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{telemetry.NodeID},
		Run: func(ctx context.Context) (ports.StoreFactory, error) {
			provider, err := graft.Dep[*telemetry.Provider](ctx)
			if err != nil {
				return nil, err
			}
			return New(provider.TracerProvider()), nil
		},
	})
}
