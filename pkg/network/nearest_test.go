package network

import (
	"testing"

	"github.com/matzehuels/routetrace/pkg/geo"
)

func lineGraph() *Graph {
	g := New()
	_ = g.AddNode(Node{Key: "A", Position: geo.Point{Lat: 0, Lon: 0}})
	_ = g.AddNode(Node{Key: "B", Position: geo.Point{Lat: 0, Lon: 0.01}})
	_ = g.AddNode(Node{Key: "C", Position: geo.Point{Lat: 0, Lon: 0.05}})
	return g
}

func TestNearest(t *testing.T) {
	g := lineGraph()

	tests := []struct {
		name    string
		p       geo.Point
		maxKm   float64
		wantKey string
		wantOK  bool
	}{
		{name: "ExactHit", p: geo.Point{Lat: 0, Lon: 0}, maxKm: 0.5, wantKey: "A", wantOK: true},
		{name: "Closer to B", p: geo.Point{Lat: 0, Lon: 0.008}, maxKm: 0.5, wantKey: "B", wantOK: true},
		{name: "OutOfRange", p: geo.Point{Lat: 1, Lon: 1}, maxKm: 0.5},
		{name: "ZeroTolerance", p: geo.Point{Lat: 0, Lon: 0}, maxKm: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Nearest(g, tt.p, tt.maxKm)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && n.Key != tt.wantKey {
				t.Errorf("Nearest = %q, want %q", n.Key, tt.wantKey)
			}
		})
	}
}

func TestNearestStrictBound(t *testing.T) {
	g := New()
	b := Node{Key: "B", Position: geo.Point{Lat: 0, Lon: 0.01}}
	_ = g.AddNode(b)
	p := geo.Point{Lat: 0, Lon: 0}
	d := p.DistanceTo(b.Position)

	if _, ok := Nearest(g, p, d); ok {
		t.Error("node at exactly maxKm must not match")
	}
	if _, ok := Nearest(g, p, d+1e-9); !ok {
		t.Error("node just inside maxKm should match")
	}
}

func TestNearestTieBreak(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{Key: "zeta", Position: geo.Point{Lat: 0, Lon: 0.01}})
	_ = g.AddNode(Node{Key: "alpha", Position: geo.Point{Lat: 0, Lon: -0.01}})

	for i := 0; i < 20; i++ {
		n, ok := Nearest(g, geo.Point{Lat: 0, Lon: 0}, 5)
		if !ok || n.Key != "alpha" {
			t.Fatalf("Nearest = %q, %v; want alpha on equal distance", n.Key, ok)
		}
	}
}

func TestAttach(t *testing.T) {
	g := lineGraph()
	user := Node{Key: "UserStart", Position: geo.Point{Lat: 0, Lon: 0.005}}

	linked, err := Attach(g, user, LinkOptions{RadiusKm: 2, WalkingKmh: 5})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	// A and B are ~0.56 km away, C is ~5 km away.
	if linked != 2 {
		t.Fatalf("linked = %d, want 2", linked)
	}
	out := g.Neighbors("UserStart")
	if len(out) != 2 || out[0].To != "A" || out[1].To != "B" {
		t.Fatalf("outgoing = %+v, want links to A then B", out)
	}
	for _, e := range out {
		if e.Mode != ModeWalking {
			t.Errorf("mode = %q, want walking", e.Mode)
		}
		if e.Minutes <= 0 {
			t.Errorf("minutes = %v, want > 0 with walking speed set", e.Minutes)
		}
	}
	back := g.Neighbors("A")
	if len(back) != 1 || back[0].To != "UserStart" {
		t.Errorf("reverse link missing: %+v", back)
	}
}

func TestAttachDefaultRadiusNoSpeed(t *testing.T) {
	g := lineGraph()
	if _, err := Attach(g, Node{Key: "X", Position: geo.Point{Lat: 0, Lon: 0}}, LinkOptions{}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	for _, e := range g.Neighbors("X") {
		if e.Minutes != 0 {
			t.Errorf("minutes = %v, want 0 without walking speed", e.Minutes)
		}
	}
	// A (same position) and B (~1.1 km) are inside the default radius; C is not.
	if got := len(g.Neighbors("X")); got != 2 {
		t.Errorf("links = %d, want 2", got)
	}
}
