package route_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/route"
)

func ExampleFindPath() {
	g := network.New()
	_ = g.AddEdge(network.Edge{From: "A", To: "B", Weight: 10, Mode: network.ModeBus})
	_ = g.AddEdge(network.Edge{From: "B", To: "C", Weight: 10, Mode: network.ModeBus})
	_ = g.AddEdge(network.Edge{From: "A", To: "C", Weight: 5, Mode: network.ModeMetro})

	res := route.FindPath(g, network.Node{Key: "A"}, network.Node{Key: "C"})
	for i, step := range res.Trace.Steps() {
		fmt.Println("step", i, len(step))
	}
	var keys []string
	for _, n := range res.Path {
		keys = append(keys, n.Key)
	}
	fmt.Println(strings.Join(keys, " "))
	fmt.Println(res.Distance)
	// Output:
	// step 0 1
	// step 1 2
	// A C
	// 5
}

func ExampleResolve() {
	g := network.New()
	_ = g.AddEdge(network.Edge{From: "A", To: "B", Weight: 3, Mode: network.ModeBus, Minutes: 6})
	_ = g.AddEdge(network.Edge{From: "A", To: "B", Weight: 1, Mode: network.ModeWalking, Minutes: 12})

	res := route.FindPath(g, network.Node{Key: "A"}, network.Node{Key: "B"})
	for _, s := range route.Resolve(context.Background(), g, res.Path) {
		fmt.Println(s.From.Key, "->", s.To.Key, s.Mode, s.DistanceKm, s.Minutes)
	}
	// Output:
	// A -> B walking 1 12
}
