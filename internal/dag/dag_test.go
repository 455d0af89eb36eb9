package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

// chain builds A -> B -> C (C depends on B depends on A).
func chain(t *testing.T) *Graph {
	t.Helper()
	g := New()
	g.AddNode(&core.Model{Name: "A"})
	g.AddNode(&core.Model{Name: "B"})
	g.AddNode(&core.Model{Name: "C"})
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("B", "C"))
	return g
}

func TestGraph_AddEdge(t *testing.T) {
	g := New()
	g.AddNode(&core.Model{Name: "A"})
	g.AddNode(&core.Model{Name: "B"})

	require.NoError(t, g.AddEdge("A", "B"))
	assert.Error(t, g.AddEdge("A", "A"), "self-loop must be rejected")
	assert.Error(t, g.AddEdge("A", "ghost"))
	assert.Error(t, g.AddEdge("ghost", "B"))

	// Duplicate edges collapse.
	require.NoError(t, g.AddEdge("A", "B"))
	assert.Equal(t, []string{"B"}, g.Children("A"))
	assert.Equal(t, []string{"A"}, g.Parents("B"))
}

func TestGraph_Sort(t *testing.T) {
	g := chain(t)

	order, cyclic := g.Sort()
	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Empty(t, cyclic)
}

func TestGraph_SortIsTopological(t *testing.T) {
	// Diamond: A feeds B and C, both feed D.
	g := New()
	for _, n := range []string{"A", "B", "C", "D"} {
		g.AddNode(&core.Model{Name: n})
	}
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("A", "C"))
	require.NoError(t, g.AddEdge("B", "D"))
	require.NoError(t, g.AddEdge("C", "D"))

	order, cyclic := g.Sort()
	require.Empty(t, cyclic)
	require.Len(t, order, 4)

	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	for _, n := range order {
		for _, p := range g.Parents(n) {
			assert.Less(t, pos[p], pos[n], "%s must run after %s", n, p)
		}
	}
}

func TestGraph_SortCycleIsNonFatal(t *testing.T) {
	g := New()
	for _, n := range []string{"A", "X", "Y"} {
		g.AddNode(&core.Model{Name: n})
	}
	// X and Y depend on each other; A is independent.
	require.NoError(t, g.AddEdge("X", "Y"))
	require.NoError(t, g.AddEdge("Y", "X"))

	order, cyclic := g.Sort()
	assert.Equal(t, []string{"A"}, order)
	assert.Equal(t, []string{"X", "Y"}, cyclic)
}

func TestGraph_Closures(t *testing.T) {
	g := chain(t)

	assert.Equal(t, []string{"A", "B"}, g.Upstream("C"))
	assert.Equal(t, []string{"B", "C"}, g.Downstream("A"))
	assert.Empty(t, g.Upstream("A"))
	assert.Empty(t, g.Downstream("C"))
}

func TestGraph_ClosuresTerminateOnCycle(t *testing.T) {
	g := New()
	g.AddNode(&core.Model{Name: "X"})
	g.AddNode(&core.Model{Name: "Y"})
	require.NoError(t, g.AddEdge("X", "Y"))
	require.NoError(t, g.AddEdge("Y", "X"))

	assert.Equal(t, []string{"X", "Y"}, g.Upstream("X"))
	assert.Equal(t, []string{"X", "Y"}, g.Downstream("Y"))
}

func TestGraph_Select(t *testing.T) {
	g := chain(t)

	assert.Equal(t, []string{"A", "B", "C"}, g.Select([]string{"+C"}, nil))
	assert.Equal(t, []string{"B", "C"}, g.Select([]string{"B+"}, nil))
	assert.Equal(t, []string{"B"}, g.Select([]string{"B"}, nil))
	assert.Equal(t, []string{"A", "B", "C"}, g.Select([]string{"+B+"}, nil))

	// Union of tokens, exclusion subtracts last.
	assert.Equal(t, []string{"A", "C"}, g.Select([]string{"A", "C"}, nil))
	assert.Equal(t, []string{"A", "C"}, g.Select([]string{"+C"}, []string{"B"}))

	// Unknown names select nothing.
	assert.Empty(t, g.Select([]string{"nope"}, nil))
}

func TestGraph_SelectByTag(t *testing.T) {
	g := New()
	g.AddNode(&core.Model{Name: "staging_a", Tags: []string{"staging"}})
	g.AddNode(&core.Model{Name: "staging_b", Tags: []string{"staging", "nightly"}})
	g.AddNode(&core.Model{Name: "mart"})

	assert.Equal(t, []string{"staging_a", "staging_b"}, g.Select([]string{"tag:staging"}, nil))
	assert.Equal(t, []string{"staging_b"}, g.Select([]string{"tag:nightly"}, nil))
	assert.Equal(t, []string{"staging_a"}, g.Select([]string{"tag:staging"}, []string{"tag:nightly"}))
}

func TestGraph_OrderSubset(t *testing.T) {
	g := chain(t)

	order, cyclic := g.OrderSubset([]string{"C", "A"})
	assert.Equal(t, []string{"A", "C"}, order)
	assert.Empty(t, cyclic)
}
