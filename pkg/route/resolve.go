package route

import (
	"context"

	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/observability"
)

// Segment describes one hop of a path.
type Segment struct {
	From       network.Node `json:"fromNode"`
	To         network.Node `json:"toNode"`
	Mode       network.Mode `json:"transportType"`
	Minutes    float64      `json:"time"`
	DistanceKm float64      `json:"distance"`
	// Inferred is set when no edge joins From and To in the graph and the
	// distance was estimated from coordinates.
	Inferred bool `json:"inferred,omitempty"`
}

// Resolve returns one segment per consecutive pair of path. For each pair it
// uses the lowest-weight edge between them, keeping the earliest inserted on
// ties. Missing edges produce an inferred segment and an OnMissingEdge event.
//
// Resolve panics if g is nil.
func Resolve(ctx context.Context, g *network.Graph, path []network.Node) []Segment {
	if g == nil {
		panic("route: nil graph")
	}
	if len(path) < 2 {
		return nil
	}

	segs := make([]Segment, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]
		if e, ok := cheapestEdge(g, from.Key, to.Key); ok {
			segs = append(segs, Segment{
				From:       from,
				To:         to,
				Mode:       e.Mode,
				Minutes:    e.Minutes,
				DistanceKm: e.Weight,
			})
			continue
		}

		observability.Route().OnMissingEdge(ctx, from.Key, to.Key)
		segs = append(segs, Segment{
			From:       from,
			To:         to,
			Mode:       network.ModeUnknown,
			DistanceKm: from.Position.DistanceTo(to.Position),
			Inferred:   true,
		})
	}
	return segs
}

func cheapestEdge(g *network.Graph, from, to string) (network.Edge, bool) {
	var (
		best  network.Edge
		found bool
	)
	for _, e := range g.Neighbors(from) {
		if e.To != to {
			continue
		}
		if !found || e.Weight < best.Weight {
			best, found = e, true
		}
	}
	return best, found
}

// Totals sums distance and minutes over segs.
func Totals(segs []Segment) (km, minutes float64) {
	for _, s := range segs {
		km += s.DistanceKm
		minutes += s.Minutes
	}
	return km, minutes
}
