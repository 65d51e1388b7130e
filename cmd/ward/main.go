// Package main is the entry point for the ward build tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/ward/cmd/ward/commands"
	"go.trai.ch/ward/internal/app"
	"go.trai.ch/ward/internal/core/domain"
	_ "go.trai.ch/ward/internal/wiring"
)

// Exit codes: 0 success, 1 build or runtime failure, 2 configuration error.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
) int {
	// Signal-driven shutdown is not an error: cancelling the context drives
	// the orderly teardown of builds and services.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, err := provider(ctx)
	if err != nil {
		// Logger is not available if initialization failed.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitFailed
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		if errors.Is(err, domain.ErrConfigInvalid) {
			return exitConfig
		}
		return exitFailed
	}
	return exitOK
}
