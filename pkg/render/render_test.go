package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/routetrace/pkg/geo"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/route"
)

func testGraph() *network.Graph {
	g := network.New()
	_ = g.AddNode(network.Node{Key: "A", Position: geo.Point{Lat: 41.00, Lon: 29.00}})
	_ = g.AddNode(network.Node{Key: "B", Position: geo.Point{Lat: 41.01, Lon: 29.00}})
	_ = g.AddNode(network.Node{Key: "C", Position: geo.Point{Lat: 41.01, Lon: 29.01}})
	for _, e := range []network.Edge{
		{From: "A", To: "B", Weight: 1.1, Mode: network.ModeBus},
		{From: "B", To: "A", Weight: 1.1, Mode: network.ModeBus},
		{From: "B", To: "C", Weight: 0.8, Mode: network.ModeMetro},
		{From: "C", To: "B", Weight: 0.8, Mode: network.ModeMetro},
		{From: "A", To: "C", Weight: 1.4, Mode: network.ModeWalking},
	} {
		_ = g.AddEdge(e)
	}
	return g
}

func nodeLine(dot, key string) string {
	for _, line := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), `"`+key+`" [`) {
			return line
		}
	}
	return ""
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(), Highlight{})

	if !strings.HasPrefix(dot, "digraph G {") || !strings.Contains(dot, "layout=neato") {
		t.Fatalf("unexpected header:\n%s", dot)
	}
	for _, k := range []string{"A", "B", "C"} {
		line := nodeLine(dot, k)
		if line == "" {
			t.Fatalf("missing node %s", k)
		}
		if !strings.Contains(line, `!"`) {
			t.Errorf("node %s not pinned: %s", k, line)
		}
	}
	if got := strings.Count(dot, " -> "); got != 3 {
		t.Errorf("edge count = %d, want 3 (reverse edges merged)", got)
	}
	if !strings.Contains(dot, modeColors[network.ModeMetro]) || !strings.Contains(dot, "style=dashed") {
		t.Error("mode styling missing")
	}
	if strings.Contains(dot, pathFill) || strings.Contains(dot, visitedFill) {
		t.Error("no highlight requested")
	}
}

func TestToDOTHighlight(t *testing.T) {
	g := testGraph()
	a, _ := g.Node("A")
	b, _ := g.Node("B")
	c, _ := g.Node("C")

	dot := ToDOT(g, Highlight{Visited: []network.Node{a, b, c}, Path: []network.Node{a, b}})

	if !strings.Contains(nodeLine(dot, "A"), pathFill) || !strings.Contains(nodeLine(dot, "B"), pathFill) {
		t.Error("path nodes should use path fill")
	}
	if !strings.Contains(nodeLine(dot, "C"), visitedFill) {
		t.Error("visited node should use visited fill")
	}
	if strings.Count(dot, "penwidth=4") != 1 {
		t.Errorf("want exactly one bold path edge:\n%s", dot)
	}
}

func TestToDOTEmptyAndDegenerate(t *testing.T) {
	if dot := ToDOT(network.New(), Highlight{}); !strings.Contains(dot, "digraph G") {
		t.Error("empty graph should still produce a digraph")
	}

	g := network.New()
	_ = g.AddNode(network.Node{Key: "Only", Position: geo.Point{Lat: 1, Lon: 1}})
	if line := nodeLine(ToDOT(g, Highlight{}), "Only"); !strings.Contains(line, `pos="0.000,0.000!"`) {
		t.Errorf("single node position: %s", line)
	}
}

func TestToDOTUserNode(t *testing.T) {
	g := testGraph()
	_ = g.AddNode(network.Node{Key: "UserStart", Position: geo.Point{Lat: 41.005, Lon: 29.0}, Category: "user"})
	if !strings.Contains(nodeLine(ToDOT(g, Highlight{}), "UserStart"), "doublecircle") {
		t.Error("ad hoc node should be drawn as a double circle")
	}
}

func TestFrameDOT(t *testing.T) {
	g := testGraph()
	a, _ := g.Node("A")
	res := route.FindPath(g, a, network.Node{Key: "C"})
	frames := res.Frames()
	if len(frames) == 0 {
		t.Fatal("no frames")
	}

	first := FrameDOT(g, frames[0])
	if !strings.Contains(nodeLine(first, "A"), visitedFill) || strings.Contains(first, pathFill) {
		t.Error("first frame should only mark the start as visited")
	}
	last := FrameDOT(g, frames[len(frames)-1])
	if !strings.Contains(nodeLine(last, "C"), pathFill) {
		t.Error("path frame should mark the destination on the path")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalized = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("input without viewBox changed: %s", got)
	}
}

func TestRenderDOTPassthrough(t *testing.T) {
	out, err := Render(context.Background(), "digraph G {}", FormatDOT)
	if err != nil || string(out) != "digraph G {}" {
		t.Errorf("Render(dot) = %q, %v", out, err)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testGraph(), Highlight{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output is not SVG")
	}
}
