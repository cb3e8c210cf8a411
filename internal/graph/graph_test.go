package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFileIsIdempotent(t *testing.T) {
	g := New()
	a := g.AddFile("/p/a.ts")
	again := g.AddFile("/p/a.ts")

	assert.Equal(t, a, again)
	assert.Equal(t, 1, g.NodeCount())
}

func TestFanInFanOutCountRawDegrees(t *testing.T) {
	g := New()
	a := g.AddFile("/p/a.ts")
	b := g.AddFile("/p/b.ts")

	// Two imports between the same pair stay distinct edges.
	g.AddDependency(a, b, EdgeData{ImportLine: 1})
	g.AddDependency(a, b, EdgeData{ImportLine: 9})

	assert.Equal(t, 2, g.FanOut(a))
	assert.Equal(t, 2, g.FanIn(b))
	assert.Equal(t, 2, g.EdgeCount())
	assert.Len(t, g.Dependencies(a), 1)
}

func TestEdgeBetweenPrefersSmallestLine(t *testing.T) {
	g := New()
	a := g.AddFile("/p/a.ts")
	b := g.AddFile("/p/b.ts")
	g.AddDependency(a, b, EdgeData{ImportLine: 12})
	g.AddDependency(a, b, EdgeData{ImportLine: 3})

	data := g.EdgeBetween(a, b)
	require.NotNil(t, data)
	assert.Equal(t, 3, data.ImportLine)
}

func TestDependentsAndDependencies(t *testing.T) {
	g := New()
	a := g.AddFile("/p/a.ts")
	b := g.AddFile("/p/b.ts")
	c := g.AddFile("/p/c.ts")
	g.AddDependency(a, c, EdgeData{ImportLine: 1})
	g.AddDependency(b, c, EdgeData{ImportLine: 1})

	assert.ElementsMatch(t, []NodeID{a, b}, g.Dependents(c))
	assert.Equal(t, []NodeID{c}, g.Dependencies(a))
}

func TestSCCFindsCycle(t *testing.T) {
	g := New()
	a := g.AddFile("/p/a.ts")
	b := g.AddFile("/p/b.ts")
	c := g.AddFile("/p/c.ts")
	g.AddDependency(a, b, EdgeData{ImportLine: 1})
	g.AddDependency(b, a, EdgeData{ImportLine: 1})
	g.AddDependency(a, c, EdgeData{ImportLine: 2})

	cycles := g.CycleComponents()
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []NodeID{a, b}, cycles[0])
}

func TestSCCMutualReachability(t *testing.T) {
	g := New()
	a := g.AddFile("/p/a.ts")
	b := g.AddFile("/p/b.ts")
	c := g.AddFile("/p/c.ts")
	d := g.AddFile("/p/d.ts")
	// a→b→c→a cycle, d hangs off c.
	g.AddDependency(a, b, EdgeData{})
	g.AddDependency(b, c, EdgeData{})
	g.AddDependency(c, a, EdgeData{})
	g.AddDependency(c, d, EdgeData{})

	cycles := g.CycleComponents()
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []NodeID{a, b, c}, cycles[0])
}

func TestSelfLoopIsACycle(t *testing.T) {
	g := New()
	a := g.AddFile("/p/a.ts")
	g.AddDependency(a, a, EdgeData{ImportLine: 1})

	cycles := g.CycleComponents()
	require.Len(t, cycles, 1)
	assert.Equal(t, []NodeID{a}, cycles[0])
}

func TestCloneIsIndependent(t *testing.T) {
	g := New()
	a := g.AddFile("/p/a.ts")
	b := g.AddFile("/p/b.ts")
	g.AddDependency(a, b, EdgeData{ImportLine: 1})

	c := g.Clone()
	c.AddDependency(b, a, EdgeData{ImportLine: 2})

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2, c.EdgeCount())
}
