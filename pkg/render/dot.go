package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/route"
)

// Highlight marks stations on a drawing. Path wins over Visited.
type Highlight struct {
	Visited []network.Node
	Path    []network.Node
}

// canvasInches is the width of the larger bounding box side.
const canvasInches = 12.0

var modeColors = map[network.Mode]string{
	network.ModeWalking: "#9e9e9e",
	network.ModeBus:     "#2e7d32",
	network.ModeMetro:   "#c62828",
	network.ModeTrain:   "#1565c0",
	network.ModeTaxi:    "#f9a825",
	network.ModeUnknown: "#424242",
}

const (
	visitedFill = "#bbdefb"
	pathFill    = "#ff8a65"
	pathEdge    = "#d84315"
)

// ToDOT converts g to Graphviz DOT. Edges joining the same pair of stations
// with the same mode in either direction are drawn once.
func ToDOT(g *network.Graph, h Highlight) string {
	visited := keySet(h.Visited)
	onPath := keySet(h.Path)
	pathHops := make(map[[2]string]bool, len(h.Path))
	for i := 0; i+1 < len(h.Path); i++ {
		pathHops[pairKey(h.Path[i].Key, h.Path[i+1].Key)] = true
	}

	nodes := g.Nodes()
	proj := newProjection(nodes)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fixedsize=true, width=0.25, fontsize=10, label=\"\"];\n")
	buf.WriteString("  edge [arrowhead=none, penwidth=1.5];\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		attrs := []string{
			fmt.Sprintf("xlabel=%q", n.Key),
			fmt.Sprintf("pos=\"%s!\"", proj.pos(n)),
		}
		switch {
		case onPath[n.Key]:
			attrs = append(attrs, "fillcolor=\""+pathFill+"\"", "penwidth=2")
		case visited[n.Key]:
			attrs = append(attrs, "fillcolor=\""+visitedFill+"\"")
		}
		if n.Category == "user" {
			attrs = append(attrs, "shape=doublecircle")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Key, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	drawn := make(map[string]bool)
	for _, e := range g.Edges() {
		pk := pairKey(e.From, e.To)
		id := pk[0] + "\x00" + pk[1] + "\x00" + string(e.Mode)
		if drawn[id] {
			continue
		}
		drawn[id] = true

		color := modeColors[e.Mode]
		if color == "" {
			color = modeColors[network.ModeUnknown]
		}
		attrs := []string{fmt.Sprintf("color=%q", color), fmt.Sprintf("tooltip=\"%s %.2f km\"", e.Mode, e.Weight)}
		if e.Mode == network.ModeWalking {
			attrs = append(attrs, "style=dashed")
		}
		if pathHops[pk] {
			attrs = append(attrs, "color=\""+pathEdge+"\"", "penwidth=4")
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", pk[0], pk[1], strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// FrameDOT draws one animation frame: visited frames highlight the
// finalized stations, the path frame highlights the route.
func FrameDOT(g *network.Graph, f route.Frame) string {
	if f.Kind == route.FramePath {
		return ToDOT(g, Highlight{Path: f.Nodes})
	}
	return ToDOT(g, Highlight{Visited: f.Nodes})
}

func keySet(nodes []network.Node) map[string]bool {
	out := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		out[n.Key] = true
	}
	return out
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// projection maps coordinates to inches with an equirectangular projection
// around the mean latitude.
type projection struct {
	minX, minY float64
	scale      float64
	cosLat     float64
}

func newProjection(nodes []network.Node) projection {
	if len(nodes) == 0 {
		return projection{scale: 1, cosLat: 1}
	}
	var sumLat float64
	for _, n := range nodes {
		sumLat += n.Position.Lat
	}
	p := projection{cosLat: math.Cos(sumLat / float64(len(nodes)) * math.Pi / 180)}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		x, y := n.Position.Lon*p.cosLat, n.Position.Lat
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	p.minX, p.minY = minX, minY
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		p.scale = 1
	} else {
		p.scale = canvasInches / span
	}
	return p
}

func (p projection) pos(n network.Node) string {
	x := (n.Position.Lon*p.cosLat - p.minX) * p.scale
	y := (n.Position.Lat - p.minY) * p.scale
	return fmt.Sprintf("%.3f,%.3f", x, y)
}
