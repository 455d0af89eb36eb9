// Package dag builds the model dependency graph and decides execution
// order. Cycles never abort a run: the acyclic portion is ordered first
// and the cyclic remainder is reported separately so callers can warn
// and continue.
package dag

import (
	"fmt"
	"sort"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// Graph is a directed graph of models. Edges point from a dependency to
// its dependent: AddEdge(parent, child) means child reads from parent.
type Graph struct {
	nodes    map[string]*core.Model
	children map[string][]string
	parents  map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*core.Model),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode adds a model to the graph. Re-adding an existing name updates
// the stored model.
func (g *Graph) AddNode(m *core.Model) {
	if _, ok := g.nodes[m.Name]; !ok {
		g.children[m.Name] = nil
		g.parents[m.Name] = nil
	}
	g.nodes[m.Name] = m
}

// AddEdge records that child depends on parent. Both nodes must exist;
// self-loops are rejected. Duplicate edges are ignored.
func (g *Graph) AddEdge(parent, child string) error {
	if _, ok := g.nodes[parent]; !ok {
		return fmt.Errorf("unknown parent node %q", parent)
	}
	if _, ok := g.nodes[child]; !ok {
		return fmt.Errorf("unknown child node %q", child)
	}
	if parent == child {
		return fmt.Errorf("self-dependency on %q", parent)
	}
	if !contains(g.children[parent], child) {
		g.children[parent] = append(g.children[parent], child)
	}
	if !contains(g.parents[child], parent) {
		g.parents[child] = append(g.parents[child], parent)
	}
	return nil
}

// Node returns the model stored under name.
func (g *Graph) Node(name string) (*core.Model, bool) {
	m, ok := g.nodes[name]
	return m, ok
}

// Parents returns the direct dependencies of name.
func (g *Graph) Parents(name string) []string {
	return g.parents[name]
}

// Children returns the direct dependents of name.
func (g *Graph) Children(name string) []string {
	return g.children[name]
}

// Names returns all node names, sorted.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Sort orders the graph with Kahn's algorithm, smallest-name-first among
// ready nodes for deterministic output. Nodes trapped in a cycle are
// returned separately, sorted by name; the caller appends them to the
// schedule after warning, so a bad edge degrades one subgraph instead of
// failing the whole run.
func (g *Graph) Sort() (order []string, cyclic []string) {
	indeg := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		indeg[name] = len(g.parents[name])
	}

	var ready []string
	for name, d := range indeg {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order = make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		var unblocked []string
		for _, child := range g.children[name] {
			indeg[child]--
			if indeg[child] == 0 {
				unblocked = append(unblocked, child)
			}
		}
		if len(unblocked) > 0 {
			ready = append(ready, unblocked...)
			sort.Strings(ready)
		}
	}

	if len(order) < len(g.nodes) {
		seen := make(map[string]struct{}, len(order))
		for _, name := range order {
			seen[name] = struct{}{}
		}
		for name := range g.nodes {
			if _, ok := seen[name]; !ok {
				cyclic = append(cyclic, name)
			}
		}
		sort.Strings(cyclic)
	}
	return order, cyclic
}

// Upstream returns the transitive dependencies of name, sorted. The
// traversal is an explicit worklist, so pathological chains cannot blow
// the stack.
func (g *Graph) Upstream(name string) []string {
	return g.closure(name, g.parents)
}

// Downstream returns the transitive dependents of name, sorted.
func (g *Graph) Downstream(name string) []string {
	return g.closure(name, g.children)
}

func (g *Graph) closure(start string, next map[string][]string) []string {
	seen := make(map[string]struct{})
	work := append([]string(nil), next[start]...)
	for len(work) > 0 {
		name := work[len(work)-1]
		work = work[:len(work)-1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		work = append(work, next[name]...)
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
