// Package domain contains the core domain models for the target dependency graph.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents a validated dependency graph of targets.
//
// Adjacency is kept as integer indices into parallel slices (forward and
// reverse edges over a name table) so that traversal allocates nothing and
// active-set views are cheap to derive.
type Graph struct {
	targets map[InternedString]Target

	index   map[InternedString]int
	names   []InternedString
	forward [][]int // forward[i]: indices of targets i depends on
	reverse [][]int // reverse[i]: indices of targets depending on i
	order   []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		targets: make(map[InternedString]Target),
		index:   make(map[InternedString]int),
	}
}

// AddTarget adds a target to the graph.
// It returns an error if a target with the same name already exists.
func (g *Graph) AddTarget(t *Target) error {
	if _, exists := g.targets[t.Name]; exists {
		return zerr.With(ErrTargetAlreadyExists, "target", t.Name.String())
	}
	g.targets[t.Name] = *t
	g.index[t.Name] = len(g.names)
	g.names = append(g.names, t.Name)
	return nil
}

// GetTarget returns the target with the given name.
func (g *Graph) GetTarget(name InternedString) (Target, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// TargetCount returns the number of targets in the graph.
func (g *Graph) TargetCount() int {
	return len(g.targets)
}

// Validate resolves dependency edges and checks for cycles using an
// iterative topological sort. It populates the adjacency slices and the
// execution order, which lists dependencies before their dependents.
func (g *Graph) Validate() error {
	n := len(g.names)
	g.forward = make([][]int, n)
	g.reverse = make([][]int, n)

	for i, name := range g.names {
		t := g.targets[name]
		for _, dep := range t.Dependencies {
			j, ok := g.index[dep]
			if !ok {
				return zerr.With(
					zerr.With(ErrUnknownDependency, "dependency", dep.String()),
					"target", name.String(),
				)
			}
			g.forward[i] = append(g.forward[i], j)
			g.reverse[j] = append(g.reverse[j], i)
		}
	}

	// Kahn's algorithm. The queue is seeded with the leaf names in sorted
	// order; targets queued after them follow the order they were added in.
	unmet := make([]int, n)
	var queue []int
	for i := range g.names {
		unmet[i] = len(g.forward[i])
		if unmet[i] == 0 {
			queue = append(queue, i)
		}
	}
	slices.SortFunc(queue, func(a, b int) int {
		return strings.Compare(g.names[a].String(), g.names[b].String())
	})

	g.order = make([]InternedString, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		g.order = append(g.order, g.names[i])
		for _, j := range g.reverse[i] {
			unmet[j]--
			if unmet[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(g.order) != n {
		return g.cycleError(unmet)
	}
	return nil
}

// cycleError reports one offending cycle among the targets left with unmet
// dependencies after the topological sort.
func (g *Graph) cycleError(unmet []int) error {
	start := -1
	for i, u := range unmet {
		if u > 0 {
			start = i
			break
		}
	}

	// Follow forward edges through unsorted nodes until one repeats.
	seen := make(map[int]int)
	var path []int
	cur := start
	for {
		if at, ok := seen[cur]; ok {
			path = path[at:]
			break
		}
		seen[cur] = len(path)
		path = append(path, cur)
		for _, j := range g.forward[cur] {
			if unmet[j] > 0 {
				cur = j
				break
			}
		}
	}

	parts := make([]string, 0, len(path)+1)
	for _, i := range path {
		parts = append(parts, g.names[i].String())
	}
	parts = append(parts, g.names[path[0]].String())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// Walk returns an iterator that yields targets in execution order,
// dependencies before dependents. It assumes Validate() returned nil.
func (g *Graph) Walk() iter.Seq[Target] {
	return func(yield func(Target) bool) {
		for _, name := range g.order {
			if !yield(g.targets[name]) {
				return
			}
		}
	}
}

// Dependents returns the names of targets that directly depend on name.
func (g *Graph) Dependents(name InternedString) []InternedString {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	deps := make([]InternedString, 0, len(g.reverse[i]))
	for _, j := range g.reverse[i] {
		deps = append(deps, g.names[j])
	}
	return deps
}

// UnknownTargets returns the names among the given that do not resolve to a
// declared target, in input order.
func (g *Graph) UnknownTargets(names []InternedString) []string {
	var unknown []string
	for _, name := range names {
		if _, ok := g.targets[name]; !ok {
			unknown = append(unknown, name.String())
		}
	}
	return unknown
}

// ActiveSet returns the transitive dependency closure of the given roots.
// Every root is validated before any closure work: if any do not name a
// declared target, one combined error lists them all.
func (g *Graph) ActiveSet(roots []InternedString) (map[InternedString]bool, error) {
	if unknown := g.UnknownTargets(roots); len(unknown) > 0 {
		return nil, zerr.With(ErrTargetNotFound, "targets", strings.Join(unknown, ", "))
	}

	active := make(map[InternedString]bool)
	queue := make([]InternedString, 0, len(roots))

	for _, root := range roots {
		if !active[root] {
			active[root] = true
			queue = append(queue, root)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range g.targets[cur].Dependencies {
			if !active[dep] {
				active[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	return active, nil
}

// OrderedSubset filters the execution order down to the given set,
// preserving dependencies-first ordering.
func (g *Graph) OrderedSubset(set map[InternedString]bool) []InternedString {
	out := make([]InternedString, 0, len(set))
	for _, name := range g.order {
		if set[name] {
			out = append(out, name)
		}
	}
	return out
}
