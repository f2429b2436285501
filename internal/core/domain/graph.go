// Package domain contains the core domain models of the workspace orchestrator.
package domain

import (
	"iter"
	"slices"
)

// Graph is the dependency graph between workspace packages.
// Edges point from a package to the packages it depends on.
type Graph struct {
	deps           map[string][]string
	index          map[string]int
	names          []string
	executionOrder []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		deps:  make(map[string][]string),
		index: make(map[string]int),
	}
}

// AddPackage adds a package node with its workspace-internal dependencies.
// Nodes keep the order they were added in; that order breaks ties when sorting.
func (g *Graph) AddPackage(name string, deps []string) error {
	if _, exists := g.deps[name]; exists {
		return Annotate(ErrDuplicatePackageName, "package", name)
	}
	g.index[name] = len(g.names)
	g.names = append(g.names, name)
	g.deps[name] = slices.Clone(deps)
	return nil
}

// Validate checks for cycles using a depth-first topological sort.
// It populates the execution order returned by Walk.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.names))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(u string) error
	visit = func(u string) error {
		visited[u] = 1
		path = append(path, u)

		deps, exists := g.deps[u]
		if !exists {
			return Annotate(ErrPackageNotFound, "package", u)
		}

		for _, dep := range deps {
			if visited[dep] == 1 {
				return buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.names {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildCycleError(path []string, dep string) error {
	cyclePath := ""
	startIdx := slices.Index(path, dep)
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i] + " -> "
	}
	cyclePath += dep
	return Annotate(ErrCycleDetected, "cycle", cyclePath)
}

// Walk yields package names dependencies-first.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range g.executionOrder {
			if !yield(name) {
				return
			}
		}
	}
}

// Dependents returns the packages depending directly on name, in insertion order.
func (g *Graph) Dependents(name string) []string {
	var out []string
	for _, n := range g.names {
		if n != name && slices.Contains(g.deps[n], name) {
			out = append(out, n)
		}
	}
	return out
}

// Order sorts subset topologically over the subgraph it induces.
// Among packages whose dependencies are satisfied, the earliest added comes first.
func (g *Graph) Order(subset []string) ([]string, error) {
	in := make(map[string]bool, len(subset))
	for _, name := range subset {
		if _, ok := g.deps[name]; !ok {
			return nil, Annotate(ErrPackageNotFound, "package", name)
		}
		in[name] = true
	}

	pending := make(map[string]int, len(in))
	for name := range in {
		for _, dep := range g.deps[name] {
			if in[dep] && dep != name {
				pending[name]++
			}
		}
	}

	order := make([]string, 0, len(in))
	done := make(map[string]bool, len(in))
	for len(order) < len(in) {
		next := ""
		for _, name := range g.names {
			if in[name] && !done[name] && pending[name] == 0 {
				next = name
				break
			}
		}
		if next == "" {
			// Only a cycle leaves nodes with unsatisfied dependencies.
			if err := g.Validate(); err != nil {
				return nil, err
			}
			return nil, ErrCycleDetected
		}
		done[next] = true
		order = append(order, next)
		for _, name := range g.Dependents(next) {
			if in[name] {
				pending[name]--
			}
		}
	}
	return order, nil
}
