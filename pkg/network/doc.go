// Package network provides the directed multi-modal transit graph.
//
// A [Graph] maps station keys to an ordered list of outgoing [Edge] values.
// Nodes are value types identified by their key alone: two nodes with the
// same key are the same node, regardless of position or category. Edge lists
// keep insertion order, which is what makes shortest-path traces reproducible
// when several candidates tie.
//
// # Building
//
//	g := network.New()
//	_ = g.AddNode(network.Node{Key: "Taksim", Position: geo.Point{Lat: 41.0369, Lon: 28.9850}})
//	_ = g.AddNode(network.Node{Key: "Sisli", Position: geo.Point{Lat: 41.0602, Lon: 28.9877}})
//	_ = g.AddEdge(network.Edge{From: "Taksim", To: "Sisli", Weight: 2.6, Mode: network.ModeMetro, Minutes: 4})
//
// Parallel edges between the same ordered pair are kept; a walking edge and
// a bus edge between two stops are both visible to the search.
//
// # Ad hoc points
//
// [Attach] inserts a point that is not part of the published network (a map
// click, a street address) and links it with walking edges to every node in a
// radius. Callers that must not modify a shared graph attach to a [Graph.Clone].
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. Concurrent readers are safe as
// long as no goroutine mutates the graph at the same time.
package network
