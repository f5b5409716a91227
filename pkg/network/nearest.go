package network

import "github.com/matzehuels/routetrace/pkg/geo"

// Nearest returns the node closest to p, provided its distance is strictly
// less than maxKm. Exact distance ties go to the lexically smallest key.
func Nearest(g *Graph, p geo.Point, maxKm float64) (Node, bool) {
	var (
		best  Node
		bestD float64
		found bool
	)
	for _, n := range g.nodes {
		d := p.DistanceTo(n.Position)
		if d >= maxKm {
			continue
		}
		if !found || d < bestD || (d == bestD && n.Key < best.Key) {
			best, bestD, found = n, d, true
		}
	}
	return best, found
}

// Within returns the nodes whose distance to p is at most radiusKm,
// sorted by key.
func Within(g *Graph, p geo.Point, radiusKm float64) []Node {
	var out []Node
	for _, n := range g.Nodes() {
		if p.DistanceTo(n.Position) <= radiusKm {
			out = append(out, n)
		}
	}
	return out
}
