package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ward/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the file watcher Graft node.
	NodeID graft.ID = "adapter.watcher"
	// HashCacheNodeID is the unique identifier for the content hash cache Graft node.
	HashCacheNodeID graft.ID = "adapter.hash_cache"
)

func init() {
	graft.Register(graft.Node[ports.Watcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Watcher, error) {
			return NewWatcher()
		},
	})

	graft.Register(graft.Node[*HashCache]{
		ID:        HashCacheNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*HashCache, error) {
			return NewHashCache(), nil
		},
	})
}
