package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ward/internal/adapters/fs"
	"go.trai.ch/ward/internal/adapters/logger"
	"go.trai.ch/ward/internal/adapters/shell"
	"go.trai.ch/ward/internal/adapters/state"
	"go.trai.ch/ward/internal/core/ports"
	"go.trai.ch/ward/internal/engine/supervisor"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			state.NodeID,
			fs.HasherNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.FingerprintStore](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			sup := supervisor.New(log, supervisor.DefaultGrace)
			return New(executor, store, hasher, sup, log), nil
		},
	})
}
