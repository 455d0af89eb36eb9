package dag

import (
	"sort"
	"strings"
)

// Select resolves a node-selection expression against the graph. Each
// include token adds models to the set; exclude tokens remove them at the
// end. Token grammar:
//
//	name       exactly that model
//	tag:T      every model tagged T
//	+name      name plus its transitive upstream closure
//	name+      name plus its transitive downstream closure
//	+name+     both closures
//
// Unknown names select nothing. The result is sorted by name; callers
// order it for execution with Sort.
func (g *Graph) Select(include, exclude []string) []string {
	selected := make(map[string]struct{})
	for _, tok := range include {
		for _, name := range g.expand(tok) {
			selected[name] = struct{}{}
		}
	}
	for _, tok := range exclude {
		for _, name := range g.expand(tok) {
			delete(selected, name)
		}
	}

	out := make([]string, 0, len(selected))
	for name := range selected {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SelectAll returns every node, for runs with no selector.
func (g *Graph) SelectAll() []string {
	return g.Names()
}

func (g *Graph) expand(tok string) []string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil
	}

	if tag, ok := strings.CutPrefix(tok, "tag:"); ok {
		var out []string
		for name, m := range g.nodes {
			if m.HasTag(tag) {
				out = append(out, name)
			}
		}
		return out
	}

	upstream := false
	downstream := false
	name := tok
	if n, ok := strings.CutPrefix(name, "+"); ok {
		upstream = true
		name = n
	}
	if n, ok := strings.CutSuffix(name, "+"); ok {
		downstream = true
		name = n
	}

	if _, ok := g.nodes[name]; !ok {
		return nil
	}

	out := []string{name}
	if upstream {
		out = append(out, g.Upstream(name)...)
	}
	if downstream {
		out = append(out, g.Downstream(name)...)
	}
	return out
}

// OrderSubset returns the graph's full schedule filtered to the given
// set, preserving topological order. Cyclic members of the set come last,
// sorted by name.
func (g *Graph) OrderSubset(names []string) (order []string, cyclic []string) {
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}

	full, tail := g.Sort()
	for _, n := range full {
		if _, ok := keep[n]; ok {
			order = append(order, n)
		}
	}
	for _, n := range tail {
		if _, ok := keep[n]; ok {
			cyclic = append(cyclic, n)
		}
	}
	return order, cyclic
}
