// Package app implements the engine façade for ward.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.trai.ch/ward/internal/adapters/watcher"
	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/ward/internal/core/ports"
	"go.trai.ch/ward/internal/engine/scheduler"
	"go.trai.ch/ward/internal/engine/watch"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App wires the configuration, the scheduler and the watch loop together.
type App struct {
	configLoader ports.ConfigLoader
	scheduler    *scheduler.Scheduler
	watcher      ports.Watcher
	hashCache    *watcher.HashCache
	store        ports.FingerprintStore
	logger       ports.Logger

	dir string
}

// New creates a new App instance rooted at the current directory.
func New(
	loader ports.ConfigLoader,
	sched *scheduler.Scheduler,
	w ports.Watcher,
	cache *watcher.HashCache,
	store ports.FingerprintStore,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		scheduler:    sched,
		watcher:      w,
		hashCache:    cache,
		store:        store,
		logger:       log,
		dir:          ".",
	}
}

// WithDir overrides the project directory. Used by tests.
func (a *App) WithDir(dir string) *App {
	a.dir = dir
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Watch keeps the engine alive reacting to input changes even when no
	// target declares a service.
	Watch bool
	// Force bypasses the fingerprint cache and rebuilds every target.
	Force bool
}

// Run executes the build process for the specified targets. When any target
// in the active set declares a service, or watching was requested, the
// engine stays in the watch loop until the context is cancelled.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return errors.Join(domain.ErrConfigInvalid, domain.ErrNoTargetsSpecified)
	}

	graph, err := a.configLoader.Load(a.dir)
	if err != nil {
		return errors.Join(domain.ErrConfigInvalid, err)
	}

	active, err := graph.ActiveSet(internNames(targetNames))
	if err != nil {
		return errors.Join(domain.ErrConfigInvalid, err)
	}

	watchMode := opts.Watch
	for name := range active {
		target, _ := graph.GetTarget(name)
		if target.HasService() {
			watchMode = true
		}
	}

	schedOpts := scheduler.Options{Watch: watchMode, Force: opts.Force}

	if !watchMode {
		return a.scheduler.Run(ctx, graph, a.dir, targetNames, nil, schedOpts)
	}

	invalidations := make(chan []string, 16)
	coordinator := watch.NewCoordinator(a.watcher, a.hashCache, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	var schedErr error
	g.Go(func() error {
		return coordinator.Run(ctx, graph, active, a.dir, invalidations)
	})
	g.Go(func() error {
		schedErr = a.scheduler.Run(ctx, graph, a.dir, targetNames, invalidations, schedOpts)
		return schedErr
	})

	err = g.Wait()
	if schedErr != nil {
		// The exit status reflects targets that ended Failed even when the
		// loop was ended by a signal.
		return schedErr
	}
	// A cancelled context is the normal signal-driven shutdown path.
	if err != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Clean removes recorded fingerprints. With no targets named, the whole
// state directory is dropped; otherwise only the named targets' records.
func (a *App) Clean(_ context.Context, targetNames []string) error {
	if len(targetNames) == 0 {
		a.logger.Info("removing fingerprint state...")
		if err := os.RemoveAll(domain.StatePath(a.dir)); err != nil {
			return zerr.Wrap(err, "failed to remove state directory")
		}
		return nil
	}

	graph, err := a.configLoader.Load(a.dir)
	if err != nil {
		return errors.Join(domain.ErrConfigInvalid, err)
	}

	// Every name is validated before anything is cleared.
	names := internNames(targetNames)
	if unknown := graph.UnknownTargets(names); len(unknown) > 0 {
		return zerr.With(domain.ErrTargetNotFound, "targets", strings.Join(unknown, ", "))
	}

	var errs error
	for _, name := range targetNames {
		if err := a.store.Clear(name); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		a.logger.Info(fmt.Sprintf("%s: fingerprint cleared", name))
	}
	return errs
}

func internNames(names []string) []domain.InternedString {
	interned := make([]domain.InternedString, len(names))
	for i, name := range names {
		interned[i] = domain.NewInternedString(name)
	}
	return interned
}
