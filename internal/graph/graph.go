// Package graph holds the project dependency graph: a directed multigraph
// over absolute file paths with import metadata on every edge. Node identity
// is an opaque integer index; the graph owns all storage and detectors
// borrow read-only views.
package graph

import (
	"github.com/archlint/archlint/internal/parser"
)

// NodeID identifies a node in the graph.
type NodeID int32

// EdgeData carries the import that created an edge.
type EdgeData struct {
	ImportLine      int               `json:"importLine"`
	ImportRange     *parser.CodeRange `json:"importRange,omitempty"`
	ImportedSymbols []string          `json:"importedSymbols,omitempty"`
	TypeOnly        bool              `json:"typeOnly,omitempty"`
}

type edge struct {
	from NodeID
	to   NodeID
	data EdgeData
}

// DependencyGraph is a directed multigraph over file paths. Duplicate edges
// between the same pair are kept distinct so each import keeps its own line
// attribution.
type DependencyGraph struct {
	paths      []string
	pathToNode map[string]NodeID
	edges      []edge
	out        map[NodeID][]int
	in         map[NodeID][]int
}

// New creates an empty graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		pathToNode: map[string]NodeID{},
		out:        map[NodeID][]int{},
		in:         map[NodeID][]int{},
	}
}

// AddFile adds path as a node, returning the existing node if already added.
func (g *DependencyGraph) AddFile(path string) NodeID {
	if id, ok := g.pathToNode[path]; ok {
		return id
	}
	id := NodeID(len(g.paths))
	g.paths = append(g.paths, path)
	g.pathToNode[path] = id
	return id
}

// AddDependency adds a from→to edge with its import metadata. Edges are never
// de-duplicated.
func (g *DependencyGraph) AddDependency(from, to NodeID, data EdgeData) {
	idx := len(g.edges)
	g.edges = append(g.edges, edge{from: from, to: to, data: data})
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
}

// Node returns the node for path, if present.
func (g *DependencyGraph) Node(path string) (NodeID, bool) {
	id, ok := g.pathToNode[path]
	return id, ok
}

// Path returns the file path of a node.
func (g *DependencyGraph) Path(id NodeID) string {
	if int(id) < 0 || int(id) >= len(g.paths) {
		return ""
	}
	return g.paths[id]
}

// Nodes returns every node ID in insertion order.
func (g *DependencyGraph) Nodes() []NodeID {
	ids := make([]NodeID, len(g.paths))
	for i := range g.paths {
		ids[i] = NodeID(i)
	}
	return ids
}

// NodeCount returns the number of nodes.
func (g *DependencyGraph) NodeCount() int { return len(g.paths) }

// EdgeCount returns the number of edges, duplicates included.
func (g *DependencyGraph) EdgeCount() int { return len(g.edges) }

// FanIn returns the raw in-degree of a node.
func (g *DependencyGraph) FanIn(id NodeID) int { return len(g.in[id]) }

// FanOut returns the raw out-degree of a node.
func (g *DependencyGraph) FanOut(id NodeID) int { return len(g.out[id]) }

// Dependencies returns the distinct targets of a node's outgoing edges, in
// first-seen order.
func (g *DependencyGraph) Dependencies(id NodeID) []NodeID {
	return g.distinctNeighbors(g.out[id], func(e edge) NodeID { return e.to })
}

// Dependents returns the distinct sources of a node's incoming edges, in
// first-seen order.
func (g *DependencyGraph) Dependents(id NodeID) []NodeID {
	return g.distinctNeighbors(g.in[id], func(e edge) NodeID { return e.from })
}

func (g *DependencyGraph) distinctNeighbors(idxs []int, pick func(edge) NodeID) []NodeID {
	seen := map[NodeID]bool{}
	var result []NodeID
	for _, i := range idxs {
		n := pick(g.edges[i])
		if !seen[n] {
			seen[n] = true
			result = append(result, n)
		}
	}
	return result
}

// Edges calls fn for every edge.
func (g *DependencyGraph) Edges(fn func(from, to NodeID, data *EdgeData)) {
	for i := range g.edges {
		e := &g.edges[i]
		fn(e.from, e.to, &e.data)
	}
}

// EdgeBetween returns the edge data for from→to. When duplicate edges exist
// the one with the smallest import line wins.
func (g *DependencyGraph) EdgeBetween(from, to NodeID) *EdgeData {
	var best *EdgeData
	for _, i := range g.out[from] {
		e := &g.edges[i]
		if e.to != to {
			continue
		}
		if best == nil || e.data.ImportLine < best.ImportLine {
			best = &e.data
		}
	}
	return best
}

// EdgesBetween returns every edge's data for from→to in insertion order.
func (g *DependencyGraph) EdgesBetween(from, to NodeID) []*EdgeData {
	var result []*EdgeData
	for _, i := range g.out[from] {
		if e := &g.edges[i]; e.to == to {
			result = append(result, &e.data)
		}
	}
	return result
}

// HasEdge reports whether at least one from→to edge exists.
func (g *DependencyGraph) HasEdge(from, to NodeID) bool {
	for _, i := range g.out[from] {
		if g.edges[i].to == to {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the graph; the copy and the original can be
// mutated independently.
func (g *DependencyGraph) Clone() *DependencyGraph {
	c := &DependencyGraph{
		paths:      append([]string(nil), g.paths...),
		pathToNode: make(map[string]NodeID, len(g.pathToNode)),
		edges:      append([]edge(nil), g.edges...),
		out:        make(map[NodeID][]int, len(g.out)),
		in:         make(map[NodeID][]int, len(g.in)),
	}
	for k, v := range g.pathToNode {
		c.pathToNode[k] = v
	}
	for k, v := range g.out {
		c.out[k] = append([]int(nil), v...)
	}
	for k, v := range g.in {
		c.in[k] = append([]int(nil), v...)
	}
	return c
}
