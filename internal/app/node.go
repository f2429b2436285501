package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/crate/internal/adapters/cas"         //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/config"      //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/fs"          //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/logger"      //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/shell"       //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/adapters/versionfile" //nolint:depguard // Wired in app layer
	"go.trai.ch/crate/internal/core/ports"
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
			fs.FileSystemNodeID,
			fs.HasherNodeID,
			versionfile.NodeID,
			cas.NodeID,
			shell.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
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
			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	fileSystem, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	versions, err := graft.Dep[ports.VersionStore](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.BuildInfoStore](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[*shell.Executor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, fileSystem, versions, store, hasher, executor, log), nil
}
