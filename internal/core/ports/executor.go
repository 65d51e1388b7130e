// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"time"

	"go.trai.ch/ward/internal/core/domain"
)

// ServiceHandle is a reference to a supervised service process.
//
// Stop terminates the process group with the given grace period: it sends a
// termination signal, waits, escalates to a forceful kill, and reaps the
// process. Stop is safe to call after the process has already exited.
// Done is closed when the underlying process has exited for any reason.
type ServiceHandle interface {
	Stop(grace time.Duration) error
	Done() <-chan struct{}
}

// Executor defines the interface for running target commands.
//
// Build commands are foreground: RunBuild spawns each command in sequence
// attached to the engine's stdio and aborts on the first non-zero exit.
// Services are background: StartService spawns the command in a new process
// group and returns a handle for the supervisor.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	RunBuild(ctx context.Context, target *domain.Target, dir string) error
	StartService(ctx context.Context, command, dir string) (ServiceHandle, error)
}
