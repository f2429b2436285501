package versionfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/crate/internal/adapters/fs"
	"go.trai.ch/crate/internal/core/ports"
)

// NodeID is the unique identifier for the version store Graft node.
const NodeID graft.ID = "adapter.version_store"

func init() {
	graft.Register(graft.Node[ports.VersionStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.FileSystemNodeID},
		Run: func(ctx context.Context) (ports.VersionStore, error) {
			fsys, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(fsys), nil
		},
	})
}
