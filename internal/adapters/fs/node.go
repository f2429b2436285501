package fs

import (
	"context"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/grindlemire/graft"
	"go.trai.ch/crate/internal/core/ports"
)

const (
	BillyNodeID      graft.ID = "adapter.fs.billy"
	WalkerNodeID     graft.ID = "adapter.fs.walker"
	FileSystemNodeID graft.ID = "adapter.fs.filesystem"
	HasherNodeID     graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[billy.Filesystem]{
		ID:        BillyNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (billy.Filesystem, error) {
			return osfs.New("/", osfs.WithBoundOS()), nil
		},
	})

	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{BillyNodeID},
		Run: func(ctx context.Context) (*Walker, error) {
			bfs, err := graft.Dep[billy.Filesystem](ctx)
			if err != nil {
				return nil, err
			}
			return NewWalker(bfs), nil
		},
	})

	graft.Register(graft.Node[ports.FileSystem]{
		ID:        FileSystemNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{BillyNodeID},
		Run: func(ctx context.Context) (ports.FileSystem, error) {
			bfs, err := graft.Dep[billy.Filesystem](ctx)
			if err != nil {
				return nil, err
			}
			return NewFileSystemFrom(bfs), nil
		},
	})

	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.Hasher, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(walker), nil
		},
	})
}
