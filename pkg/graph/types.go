package graph

import (
	"github.com/voltlab/spicegraph/pkg/netlist"
)

// VertexKind distinguishes the two sides of the bipartite graph.
type VertexKind string

const (
	KindComp VertexKind = "comp" // a circuit component
	KindNode VertexKind = "node" // an electrical node
)

// EdgeKind distinguishes electrical pin connections from non-electrical
// coupling declarations.
type EdgeKind string

const (
	EdgeElectrical EdgeKind = "electrical"
	EdgeCoupling   EdgeKind = "coupling"
)

// Vertex is one graph vertex: either a component (with device class and
// a back-reference to the parsed component) or an electrical node.
type Vertex struct {
	ID    string
	Kind  VertexKind
	CType string             // device class, comp vertices only
	Comp  *netlist.Component // nil for node vertices and placeholders
}

// Edge connects a component to an electrical node (electrical, keyed
// "ref:pin" so parallel pin connections stay distinct) or two
// components (coupling, carrying the coefficient token).
type Edge struct {
	Key   string
	Kind  EdgeKind
	From  string
	To    string
	Pin   string // electrical edges: pin name on the component side
	Coeff string // coupling edges: coefficient token, may be empty
}

// Stats summarizes graph size for validation reports.
type Stats struct {
	Vertices        int `json:"nodes"`
	Components      int `json:"components"`
	ElectricalNodes int `json:"electrical_nodes"`
}

// Graph is a bipartite multigraph of components and electrical nodes.
// Vertices keeps insertion order so rule output is deterministic.
type Graph struct {
	vertices map[string]*Vertex
	order    []string
	adj      map[string][]*Edge // vertex id -> incident edges, both directions
	edges    []*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		vertices: make(map[string]*Vertex),
		adj:      make(map[string][]*Edge),
	}
}

// AddVertex inserts a vertex if absent and returns it. An existing
// vertex is returned unchanged.
func (g *Graph) AddVertex(v *Vertex) *Vertex {
	if existing, ok := g.vertices[v.ID]; ok {
		return existing
	}
	g.vertices[v.ID] = v
	g.order = append(g.order, v.ID)
	return v
}

// AddEdge inserts an edge between two existing vertices. Parallel edges
// with distinct keys are preserved.
func (g *Graph) AddEdge(e *Edge) {
	g.edges = append(g.edges, e)
	g.adj[e.From] = append(g.adj[e.From], e)
	g.adj[e.To] = append(g.adj[e.To], e)
}

// Vertex looks up a vertex by id.
func (g *Graph) Vertex(id string) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.vertices[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// Degree returns the number of incident edges, counting parallel edges
// individually.
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// Neighbors returns the distinct vertices adjacent to id, in first-seen
// edge order.
func (g *Graph) Neighbors(id string) []*Vertex {
	seen := make(map[string]bool)
	out := make([]*Vertex, 0, len(g.adj[id]))
	for _, e := range g.adj[id] {
		other := e.To
		if other == id {
			other = e.From
		}
		if seen[other] {
			continue
		}
		seen[other] = true
		out = append(out, g.vertices[other])
	}
	return out
}

// Stats counts vertices by kind.
func (g *Graph) Stats() Stats {
	s := Stats{Vertices: len(g.vertices)}
	for _, v := range g.vertices {
		switch v.Kind {
		case KindComp:
			s.Components++
		case KindNode:
			s.ElectricalNodes++
		}
	}
	return s
}
