// Package scheduler implements the driver state machine that executes the
// target graph.
//
// A single driver goroutine owns all per-target state. Builds run on worker
// goroutines and report back over a completion channel; the watch
// coordinator feeds invalidations over a second channel. The driver selects
// over both, so every state transition happens in one place.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/ward/internal/core/domain"
	"go.trai.ch/ward/internal/core/ports"
	"go.trai.ch/ward/internal/engine/supervisor"
	"go.trai.ch/zerr"
)

// shutdownTimeout bounds how long shutdown waits for in-flight builds after
// the context is cancelled. The shared context has already killed the build
// shells at that point; this only covers reaping.
const shutdownTimeout = 10 * time.Second

// Scheduler executes targets in dependency order with maximum parallelism,
// skipping targets whose inputs have not changed.
type Scheduler struct {
	executor   ports.Executor
	store      ports.FingerprintStore
	hasher     ports.Hasher
	supervisor *supervisor.Supervisor
	logger     ports.Logger

	mu     sync.RWMutex
	phases map[domain.InternedString]domain.Phase
}

// New creates a new Scheduler with the given collaborators.
func New(
	executor ports.Executor,
	store ports.FingerprintStore,
	hasher ports.Hasher,
	sup *supervisor.Supervisor,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor:   executor,
		store:      store,
		hasher:     hasher,
		supervisor: sup,
		logger:     logger,
		phases:     make(map[domain.InternedString]domain.Phase),
	}
}

// Options configures a scheduler run.
type Options struct {
	// Watch keeps the driver alive after the initial pass, waiting for
	// invalidations, until the context is cancelled.
	Watch bool
	// Force bypasses the fingerprint check and rebuilds every target.
	Force bool
}

// Phase returns the last observed phase of a target. Used by tests; the
// driver is the only writer.
func (s *Scheduler) Phase(name domain.InternedString) domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phases[name]
}

func (s *Scheduler) setPhase(name domain.InternedString, p domain.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phases[name] = p
}

type targetState struct {
	target              domain.Target
	phase               domain.Phase
	unmetDeps           int
	pendingReinvocation bool
	depsNotified        bool
}

type buildResult struct {
	name        domain.InternedString
	fingerprint domain.Fingerprint
	err         error
}

type runState struct {
	s             *Scheduler
	ctx           context.Context
	graph         *domain.Graph
	dir           string
	states        map[domain.InternedString]*targetState
	ready         []domain.InternedString
	inflight      int
	resultsCh     chan buildResult
	invalidations <-chan []string
	opts          Options
	errs          error
}

// Run builds the transitive closure of the given roots. In watch mode it
// then keeps reacting to invalidations until ctx is cancelled. On return,
// all services have been shut down and the error reflects whether any
// target in the active set ended Failed.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	dir string,
	rootNames []string,
	invalidations <-chan []string,
	opts Options,
) error {
	roots := make([]domain.InternedString, len(rootNames))
	for i, name := range rootNames {
		roots[i] = domain.NewInternedString(name)
	}

	active, err := graph.ActiveSet(roots)
	if err != nil {
		return err
	}

	state := &runState{
		s:             s,
		ctx:           ctx,
		graph:         graph,
		dir:           dir,
		states:        make(map[domain.InternedString]*targetState, len(active)),
		resultsCh:     make(chan buildResult, len(active)),
		invalidations: invalidations,
		opts:          opts,
	}

	for name := range active {
		target, _ := graph.GetTarget(name)
		ts := &targetState{
			target:    target,
			phase:     domain.PhasePending,
			unmetDeps: len(target.Dependencies),
		}
		state.states[name] = ts
		s.setPhase(name, domain.PhasePending)
		if ts.unmetDeps == 0 {
			state.enqueue(name)
		}
	}

	state.runLoop()
	state.drainInflight()

	// Dependents shut down before their dependencies.
	order := graph.OrderedSubset(active)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	s.supervisor.ShutdownAll(order)

	var failed []string
	for name, ts := range state.states {
		if ts.phase == domain.PhaseFailed {
			failed = append(failed, name.String())
		}
	}
	if len(failed) > 0 {
		slices.Sort(failed)
		state.errs = errors.Join(domain.ErrBuildFailed,
			zerr.With(zerr.New("targets failed"), "targets", strings.Join(failed, ", ")),
			state.errs)
	}
	return state.errs
}

func (state *runState) enqueue(name domain.InternedString) {
	state.states[name].phase = domain.PhaseReady
	state.s.setPhase(name, domain.PhaseReady)
	state.ready = append(state.ready, name)
}

func (state *runState) setPhase(name domain.InternedString, p domain.Phase) {
	state.states[name].phase = p
	state.s.setPhase(name, p)
}

func (state *runState) runLoop() {
	for {
		state.dispatch()

		if state.ctx.Err() != nil {
			return
		}
		if !state.opts.Watch && state.inflight == 0 && len(state.ready) == 0 {
			return
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case names, ok := <-state.invalidations:
			if !ok {
				state.invalidations = nil
				continue
			}
			state.handleInvalidations(names)
		case <-state.ctx.Done():
			return
		}
	}
}

// dispatch drains the ready queue. Every popped target either skips straight
// to service handling or goes to a build worker; parallelism is bounded only
// by the number of simultaneously ready targets.
func (state *runState) dispatch() {
	for len(state.ready) > 0 && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		ts := state.states[name]
		fp := state.fingerprint(ts)

		if !state.opts.Force && state.upToDate(name, fp) {
			state.s.logger.Info(fmt.Sprintf("%s: up to date", name.String()))
			state.finish(name, true)
			continue
		}

		state.setPhase(name, domain.PhaseBuilding)

		// The fingerprint is cleared before the build starts and saved only
		// after it succeeds, so a failed or interrupted build can never be
		// skipped on the next pass.
		if fp != domain.AlwaysStale {
			if err := state.s.store.Clear(name.String()); err != nil {
				state.s.logger.Warn(fmt.Sprintf("%s: %v", name.String(), err))
			}
		}

		state.inflight++
		target := ts.target
		go func() {
			err := state.s.executor.RunBuild(state.ctx, &target, state.dir)
			state.resultsCh <- buildResult{name: target.Name, fingerprint: fp, err: err}
		}()
	}
}

// fingerprint computes the target's current fingerprint. Hashing errors are
// non-fatal: the target is treated as stale and a warning is emitted.
func (state *runState) fingerprint(ts *targetState) domain.Fingerprint {
	if !ts.target.HasInputs() {
		return domain.AlwaysStale
	}
	fp, err := state.s.hasher.Fingerprint(&ts.target, state.dir)
	if err != nil {
		state.s.logger.Warn(fmt.Sprintf("%s: %v", ts.target.Name.String(), err))
		return ""
	}
	return fp
}

// upToDate reports whether the build can be skipped: the stored fingerprint
// exists (which implies the previous build succeeded) and equals the current
// one. Store errors count as a miss.
func (state *runState) upToDate(name domain.InternedString, fp domain.Fingerprint) bool {
	if fp == domain.AlwaysStale || fp.IsZero() {
		return false
	}
	stored, err := state.s.store.Load(name.String())
	if err != nil {
		state.s.logger.Warn(fmt.Sprintf("%s: %v", name.String(), err))
		return false
	}
	return !stored.IsZero() && stored == fp
}

func (state *runState) handleResult(res buildResult) {
	state.inflight--
	ts := state.states[res.name]

	if res.err != nil {
		state.s.logger.Error(zerr.With(res.err, "target", res.name.String()))
		state.setPhase(res.name, domain.PhaseFailed)
	} else {
		if res.fingerprint != domain.AlwaysStale && !res.fingerprint.IsZero() {
			if err := state.s.store.Save(res.name.String(), res.fingerprint); err != nil {
				state.s.logger.Warn(fmt.Sprintf("%s: %v", res.name.String(), err))
			}
		}
		state.finish(res.name, false)
	}

	// An invalidation that arrived mid-build re-enters the state machine
	// regardless of the finished build's outcome.
	if ts.pendingReinvocation {
		ts.pendingReinvocation = false
		state.reschedule(res.name)
	}
}

// finish performs service handling and the Built/Serving transition for a
// target whose build succeeded or was skipped.
func (state *runState) finish(name domain.InternedString, skipped bool) {
	ts := state.states[name]

	if ts.target.HasService() {
		err := state.s.supervisor.Replace(name, func() (ports.ServiceHandle, error) {
			return state.s.executor.StartService(state.ctx, ts.target.ServiceCommand, state.dir)
		})
		if err != nil {
			state.s.logger.Error(zerr.With(
				errors.Join(domain.ErrServiceSpawnFailed, err), "target", name.String()))
			state.setPhase(name, domain.PhaseFailed)
			return
		}
		state.setPhase(name, domain.PhaseServing)
	} else {
		state.setPhase(name, domain.PhaseBuilt)
	}

	if !skipped {
		state.s.logger.Info(fmt.Sprintf("%s: done", name.String()))
	}

	// Each dependency edge is satisfied at most once; rebuilds triggered by
	// invalidations do not re-run dependent bookkeeping.
	if !ts.depsNotified {
		ts.depsNotified = true
		for _, dep := range state.graph.Dependents(name) {
			dts, ok := state.states[dep]
			if !ok {
				continue
			}
			dts.unmetDeps--
			if dts.unmetDeps == 0 && (dts.phase == domain.PhasePending || dts.phase == domain.PhaseInvalidated) {
				state.enqueue(dep)
			}
		}
	}

	// Invalidated dependents that were waiting for this target can move on.
	state.promoteInvalidated(name)
}

// promoteInvalidated re-queues dependents stuck in Invalidated whose
// dependencies are now all Built or Serving.
func (state *runState) promoteInvalidated(name domain.InternedString) {
	for _, dep := range state.graph.Dependents(name) {
		dts, ok := state.states[dep]
		if !ok || dts.phase != domain.PhaseInvalidated {
			continue
		}
		if state.depsSatisfied(dts) {
			state.enqueue(dep)
		}
	}
}

func (state *runState) depsSatisfied(ts *targetState) bool {
	for _, dep := range ts.target.Dependencies {
		phase := state.states[dep].phase
		if phase != domain.PhaseBuilt && phase != domain.PhaseServing {
			return false
		}
	}
	return true
}

// reschedule re-enters a target at Ready, or parks it in Invalidated until
// its dependencies settle.
func (state *runState) reschedule(name domain.InternedString) {
	ts := state.states[name]
	if state.depsSatisfied(ts) {
		state.enqueue(name)
	} else {
		state.setPhase(name, domain.PhaseInvalidated)
	}
}

// handleInvalidations reacts to changed inputs reported by the watch
// coordinator. Invalidations never cascade to dependents: a dependent is
// rebuilt only when its own inputs changed.
func (state *runState) handleInvalidations(names []string) {
	for _, nameStr := range names {
		name := domain.NewInternedString(nameStr)
		ts, ok := state.states[name]
		if !ok {
			continue
		}

		switch ts.phase {
		case domain.PhaseBuilding:
			ts.pendingReinvocation = true
		case domain.PhaseBuilt, domain.PhaseServing, domain.PhaseFailed, domain.PhaseInvalidated:
			state.setPhase(name, domain.PhaseInvalidated)
			state.reschedule(name)
		case domain.PhasePending, domain.PhaseReady:
			// Pending targets have never produced anything to invalidate;
			// Ready targets are already queued.
		}
	}
}

// drainInflight waits for outstanding workers after the loop exits. The
// cancelled context has already killed their shells; a hard timeout covers
// a worker that fails to report anyway.
func (state *runState) drainInflight() {
	if state.inflight == 0 {
		return
	}

	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()

	for state.inflight > 0 {
		select {
		case res := <-state.resultsCh:
			state.inflight--
			if res.err != nil {
				state.setPhase(res.name, domain.PhaseFailed)
			}
		case <-timer.C:
			return
		}
	}
}
