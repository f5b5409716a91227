// Package route finds shortest paths over a [network.Graph] and explains them.
//
// [FindPath] runs Dijkstra's algorithm from a start station to an end station
// and returns, besides the path, the exploration [Trace]: the order in which
// stations had their shortest distance finalized. Replaying the trace step by
// step animates how the search spread across the network before reaching the
// destination.
//
// # Determinism
//
// Queue entries with equal tentative distance are ordered by station key, and
// edges are relaxed in insertion order. Two runs over the same graph produce
// the same trace and the same path.
//
// # No path is not an error
//
// If the start or end station is not part of the graph, FindPath returns an
// empty trace and an empty path. If both exist but the end is unreachable,
// the trace lists everything reachable and the path is empty. Neither case
// returns an error; only a nil graph (a programming error) panics.
//
// # Segments
//
// [Resolve] maps a path back onto the graph, picking for each hop the lowest
// weight edge between the two stations, and reports transport mode, minutes,
// and distance per hop. A hop with no edge in the graph is still reported,
// with mode unknown and a great-circle distance, and announced through
// observability.RouteHooks.OnMissingEdge.
//
// # Concurrency
//
// FindPath and Resolve only read the graph. Any number of searches may run
// concurrently against the same graph as long as nobody mutates it meanwhile.
package route
