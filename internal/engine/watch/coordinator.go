// Package watch maps filesystem events back to targets and feeds
// invalidations to the scheduler.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/ward/internal/adapters/watcher"
	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/ward/internal/core/ports"
)

// Coordinator subscribes to filesystem events under the union of the active
// set's input paths, debounces bursts, and translates each coalesced burst
// into at most one invalidation per affected target.
type Coordinator struct {
	watcher ports.Watcher
	cache   *watcher.HashCache
	logger  ports.Logger
	window  time.Duration
}

// NewCoordinator creates a watch coordinator.
func NewCoordinator(w ports.Watcher, cache *watcher.HashCache, logger ports.Logger) *Coordinator {
	return &Coordinator{
		watcher: w,
		cache:   cache,
		logger:  logger,
		window:  watcher.DefaultDebounceWindow,
	}
}

// WithWindow overrides the debounce window. Used by tests.
func (c *Coordinator) WithWindow(window time.Duration) *Coordinator {
	c.window = window
	return c
}

// claim associates one declared input path with the target that declared it.
type claim struct {
	path   string
	target string
}

// Run watches the input paths of every target in the active set and sends
// batches of invalidated target names to out until ctx is cancelled. A
// watcher that fails to start is fatal for the watch loop; errors the
// watcher reports after it has started do not end the loop.
func (c *Coordinator) Run(
	ctx context.Context,
	graph *domain.Graph,
	active map[domain.InternedString]bool,
	dir string,
	out chan<- []string,
) error {
	claims, roots := collectClaims(graph, active, dir)
	if len(roots) == 0 {
		// Nothing to watch; stay alive so services keep being supervised.
		<-ctx.Done()
		return nil
	}

	if err := c.watcher.Start(ctx, roots); err != nil {
		return errors.Join(domain.ErrWatchFailed, err)
	}
	defer c.watcher.Stop() //nolint:errcheck // best effort on the way out

	c.logger.Info(fmt.Sprintf("watching %d input paths", len(roots)))

	debouncer := watcher.NewDebouncer(c.window, func(paths []string) {
		names := matchTargets(claims, paths)
		if len(names) == 0 {
			return
		}
		select {
		case out <- names:
		case <-ctx.Done():
		}
	})

	stateDir := domain.StatePath(dir)
	for event := range c.watcher.Events() {
		if underPath(stateDir, event.Path) {
			continue
		}
		// Write events that did not change file content (a save without an
		// edit) are dropped before debouncing; other operations always pass.
		if event.Operation == ports.OpWrite && !c.cache.Changed(event.Path) {
			continue
		}
		debouncer.Add(event.Path)
	}

	return ctx.Err()
}

// collectClaims resolves every declared input path of the active set to an
// absolute path claim, and returns the deduplicated watch roots.
func collectClaims(graph *domain.Graph, active map[domain.InternedString]bool, dir string) ([]claim, []string) {
	var claims []claim
	seen := make(map[string]bool)
	var roots []string

	for target := range graph.Walk() {
		if !active[target.Name] {
			continue
		}
		for _, input := range target.InputPaths {
			abs := input.String()
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(dir, abs)
			}
			claims = append(claims, claim{path: abs, target: target.Name.String()})
			if !seen[abs] {
				seen[abs] = true
				roots = append(roots, abs)
			}
		}
	}

	return claims, roots
}

// matchTargets maps coalesced event paths to the targets whose declared
// input paths prefix them. Each matched target appears once regardless of
// how many of its paths were touched.
func matchTargets(claims []claim, paths []string) []string {
	matched := make(map[string]bool)
	var names []string

	for _, p := range paths {
		for _, cl := range claims {
			if !underPath(cl.path, p) {
				continue
			}
			if !matched[cl.target] {
				matched[cl.target] = true
				names = append(names, cl.target)
			}
		}
	}

	return names
}

// underPath reports whether p equals prefix or lies beneath it.
func underPath(prefix, p string) bool {
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+string(filepath.Separator))
}
