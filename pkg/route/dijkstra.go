package route

import (
	"container/heap"
	"context"
	"math"
	"slices"
	"time"

	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/observability"
)

// Result is the outcome of a search.
type Result struct {
	Start network.Node
	End   network.Node
	Trace Trace
	// Path is empty when no route exists.
	Path []network.Node
	// Distance is the summed edge weight of Path in km, or +Inf without a path.
	Distance float64
}

// Found reports whether a path was found.
func (r Result) Found() bool { return len(r.Path) > 0 }

// Frames returns one visited frame per trace step followed by a final path
// frame. The path frame is always last, and present (possibly empty) whenever
// the trace is non-empty.
func (r Result) Frames() []Frame {
	if r.Trace.Len() == 0 {
		return nil
	}
	frames := make([]Frame, 0, r.Trace.Len()+1)
	for i := range r.Trace.Len() {
		frames = append(frames, Frame{Index: i, Kind: FrameVisited, Nodes: r.Trace.Step(i)})
	}
	frames = append(frames, Frame{Index: r.Trace.Len(), Kind: FramePath, Nodes: slices.Clone(r.Path)})
	return frames
}

// FindPath returns the shortest path from start to end in g together with the
// exploration trace. Only the Key of start and end is consulted; the returned
// nodes are the ones stored in g. g is never modified.
//
// Unknown or zero-value start/end nodes yield an empty Result. FindPath panics
// if g is nil.
func FindPath(g *network.Graph, start, end network.Node) Result {
	res, _ := FindPathContext(context.Background(), g, start, end)
	return res
}

// FindPathContext is like FindPath but stops early with ctx.Err() when ctx is
// cancelled. Runs that complete return exactly what FindPath returns.
func FindPathContext(ctx context.Context, g *network.Graph, start, end network.Node) (Result, error) {
	if g == nil {
		panic("route: nil graph")
	}
	began := time.Now()
	observability.Route().OnSearchStart(ctx, start.Key, end.Key)

	res, err := search(ctx, g, start.Key, end.Key)

	observability.Route().OnSearchComplete(ctx, start.Key, end.Key, res.Trace.Len(), res.Found(), time.Since(began))
	return res, err
}

func search(ctx context.Context, g *network.Graph, startKey, endKey string) (Result, error) {
	res := Result{Distance: math.Inf(1)}
	s, okStart := g.Node(startKey)
	e, okEnd := g.Node(endKey)
	if !okStart || !okEnd {
		return res, nil
	}
	res.Start, res.End = s, e

	dist := map[string]float64{s.Key: 0}
	prev := make(map[string]string)
	done := make(map[string]bool)

	q := &queue{{key: s.Key, dist: 0}}
	for q.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{Distance: math.Inf(1)}, err
		}
		cur := heap.Pop(q).(entry)
		if done[cur.key] {
			continue
		}
		done[cur.key] = true
		n, _ := g.Node(cur.key)
		res.Trace.order = append(res.Trace.order, n)
		if cur.key == e.Key {
			break
		}

		for _, edge := range g.Neighbors(cur.key) {
			if done[edge.To] {
				continue
			}
			nd := cur.dist + edge.Weight
			if old, seen := dist[edge.To]; !seen || nd < old {
				dist[edge.To] = nd
				prev[edge.To] = cur.key
				heap.Push(q, entry{key: edge.To, dist: nd})
			}
		}
	}

	res.Path = reconstruct(g, prev, s.Key, e.Key)
	if len(res.Path) > 0 {
		res.Distance = dist[e.Key]
	}
	return res, nil
}

// reconstruct walks predecessors back from end. A chain that does not reach
// start yields nil rather than a partial path.
func reconstruct(g *network.Graph, prev map[string]string, start, end string) []network.Node {
	if start == end {
		n, _ := g.Node(start)
		return []network.Node{n}
	}

	keys := []string{end}
	for cur := end; cur != start; {
		p, ok := prev[cur]
		if !ok || len(keys) > g.NodeCount() {
			return nil
		}
		keys = append(keys, p)
		cur = p
	}
	slices.Reverse(keys)

	path := make([]network.Node, len(keys))
	for i, k := range keys {
		path[i], _ = g.Node(k)
	}
	return path
}
