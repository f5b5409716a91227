package network

import (
	"errors"
	"maps"
	"math"
	"slices"
)

var (
	// ErrInvalidNodeKey is returned by [Graph.AddNode] and [Graph.AddEdge]
	// when a node key is empty.
	ErrInvalidNodeKey = errors.New("node key must not be empty")

	// ErrInvalidWeight is returned by [Graph.AddEdge] when the weight is
	// negative, NaN, or infinite. Dijkstra requires finite non-negative weights.
	ErrInvalidWeight = errors.New("edge weight must be finite and non-negative")
)

// Graph is a directed multigraph keyed by node key.
//
// The zero value is not usable; use [New].
type Graph struct {
	nodes map[string]Node
	adj   map[string][]Edge
	edges int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		adj:   make(map[string][]Edge),
	}
}

// AddNode inserts n with an empty edge list. Adding a key that already
// exists is a no-op: the stored node and its edges are left untouched.
func (g *Graph) AddNode(n Node) error {
	if n.Key == "" {
		return ErrInvalidNodeKey
	}
	if _, ok := g.nodes[n.Key]; ok {
		return nil
	}
	g.nodes[n.Key] = n
	g.adj[n.Key] = nil
	return nil
}

// AddEdge appends e to the edge list of e.From. Endpoints that are not yet
// in the graph are inserted as key-only nodes. Parallel edges are never
// deduplicated.
func (g *Graph) AddEdge(e Edge) error {
	if e.From == "" || e.To == "" {
		return ErrInvalidNodeKey
	}
	if e.Weight < 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
		return ErrInvalidWeight
	}
	if e.Mode == "" {
		e.Mode = ModeUnknown
	}
	_ = g.AddNode(Node{Key: e.From})
	_ = g.AddNode(Node{Key: e.To})
	g.adj[e.From] = append(g.adj[e.From], e)
	g.edges++
	return nil
}

// Neighbors returns the outgoing edges of key in insertion order, or nil if
// the key is unknown. The returned slice is a read-only view.
func (g *Graph) Neighbors(key string) []Edge { return g.adj[key] }

// Node returns the node stored under key.
func (g *Graph) Node(key string) (Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Has reports whether key is a node of the graph.
func (g *Graph) Has(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// Nodes returns all nodes sorted by key.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, k := range slices.Sorted(maps.Keys(g.nodes)) {
		out = append(out, g.nodes[k])
	}
	return out
}

// Edges returns a copy of all edges, grouped by source key in key order
// and in insertion order within each group.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, k := range slices.Sorted(maps.Keys(g.adj)) {
		out = append(out, g.adj[k]...)
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, parallel edges included.
func (g *Graph) EdgeCount() int { return g.edges }

// Clone returns a deep copy of g. Mutating the clone never affects g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: maps.Clone(g.nodes),
		adj:   make(map[string][]Edge, len(g.adj)),
		edges: g.edges,
	}
	for k, es := range g.adj {
		c.adj[k] = slices.Clone(es)
	}
	return c
}
