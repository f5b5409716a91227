package route

import (
	"slices"

	"github.com/matzehuels/routetrace/pkg/network"
)

// Trace records the order in which a search finalized stations.
//
// Step i is the set of stations finalized after i+1 pops, in finalization
// order. Steps share one backing array, so storing a trace costs O(V)
// rather than the O(V²) of materializing every snapshot.
type Trace struct {
	order []network.Node
}

// Len returns the number of steps.
func (t Trace) Len() int { return len(t.order) }

// Step returns the finalized set after step i (0-based). The returned slice
// has length i+1 and must not be modified. It panics if i is out of range.
func (t Trace) Step(i int) []network.Node {
	return t.order[:i+1 : i+1]
}

// Steps materializes every snapshot.
func (t Trace) Steps() [][]network.Node {
	out := make([][]network.Node, len(t.order))
	for i := range t.order {
		out[i] = t.Step(i)
	}
	return out
}

// Order returns a copy of the finalized stations in finalization order.
func (t Trace) Order() []network.Node { return slices.Clone(t.order) }

// Last returns the most recently finalized station.
func (t Trace) Last() (network.Node, bool) {
	if len(t.order) == 0 {
		return network.Node{}, false
	}
	return t.order[len(t.order)-1], true
}

// FrameKind tags a frame as an exploration snapshot or the final path.
type FrameKind string

const (
	FrameVisited FrameKind = "visited"
	FramePath    FrameKind = "path"
)

// Frame is one picture of a search animation.
type Frame struct {
	Index int            `json:"index"`
	Kind  FrameKind      `json:"kind"`
	Nodes []network.Node `json:"nodes"`
}
