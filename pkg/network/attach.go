package network

// DefaultLinkRadiusKm is the radius used by [Attach] when none is given.
const DefaultLinkRadiusKm = 2.0

// LinkOptions controls how [Attach] connects an ad hoc node.
type LinkOptions struct {
	// RadiusKm bounds which existing nodes get a walking link.
	// Zero means DefaultLinkRadiusKm.
	RadiusKm float64
	// WalkingKmh converts link distance to minutes. Zero leaves Minutes at 0.
	WalkingKmh float64
}

// Attach adds n to g and links it in both directions to every other node
// within the link radius, using walking edges weighted by great-circle
// distance. It returns the number of nodes linked. If n already exists the
// stored node is kept but links are still added.
func Attach(g *Graph, n Node, opts LinkOptions) (int, error) {
	if err := g.AddNode(n); err != nil {
		return 0, err
	}
	n, _ = g.Node(n.Key)
	radius := opts.RadiusKm
	if radius <= 0 {
		radius = DefaultLinkRadiusKm
	}

	linked := 0
	for _, other := range Within(g, n.Position, radius) {
		if other.Key == n.Key {
			continue
		}
		d := n.Position.DistanceTo(other.Position)
		var minutes float64
		if opts.WalkingKmh > 0 {
			minutes = d / opts.WalkingKmh * 60
		}
		if err := g.AddEdge(Edge{From: n.Key, To: other.Key, Weight: d, Mode: ModeWalking, Minutes: minutes}); err != nil {
			return linked, err
		}
		if err := g.AddEdge(Edge{From: other.Key, To: n.Key, Weight: d, Mode: ModeWalking, Minutes: minutes}); err != nil {
			return linked, err
		}
		linked++
	}
	return linked, nil
}
