// SPDX-License-Identifier: MPL-2.0

// Package dag orders the packages of a dependency graph so that every
// package comes after the packages it depends on.
package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is matched by every CycleError.
var ErrCycle = errors.New("dependency cycle")

type (
	// CycleError lists the nodes that could not be ordered.
	CycleError struct {
		// Cycle holds every node left with unsatisfied dependencies. It
		// contains at least one cycle, possibly with nodes downstream of it.
		Cycle []string
	}

	// Graph is a directed graph keyed by package id. An edge from A to B
	// means A must be built before B.
	Graph struct {
		dependents map[string][]string
		// order records first sight of each node and makes sorting stable.
		order []string
		known map[string]struct{}
	}
)

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between %s", strings.Join(e.Cycle, ", "))
}

// Unwrap returns ErrCycle for errors.Is() compatibility.
func (e *CycleError) Unwrap() error { return ErrCycle }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		dependents: make(map[string][]string),
		known:      make(map[string]struct{}),
	}
}

// AddNode adds a node; adding it again is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.known[id]; ok {
		return
	}
	g.known[id] = struct{}{}
	g.order = append(g.order, id)
}

// AddEdge records that from must be built before to, adding both nodes.
// Repeated edges are collapsed.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	for _, existing := range g.dependents[from] {
		if existing == to {
			return
		}
	}
	g.dependents[from] = append(g.dependents[from], to)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// TopologicalSort returns every node after all of its dependencies, using
// Kahn's algorithm. Ready nodes are emitted in the order they were first
// added, so equal graphs built the same way sort the same way.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.order) == 0 {
		return nil, nil
	}

	pending := make(map[string]int, len(g.order))
	for _, targets := range g.dependents {
		for _, to := range targets {
			pending[to]++
		}
	}

	ready := make([]string, 0, len(g.order))
	for _, id := range g.order {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)
		for _, to := range g.dependents[id] {
			pending[to]--
			if pending[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(sorted) < len(g.order) {
		var stuck []string
		for _, id := range g.order {
			if pending[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, &CycleError{Cycle: stuck}
	}
	return sorted, nil
}
