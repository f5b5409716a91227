// Package pkg holds the routetrace libraries.
//
// # Overview
//
// Routetrace finds shortest routes through a multi-modal transit network
// (walking, bus, metro, train, taxi) and records the order in which the
// search settled stations, so the search can be replayed frame by frame.
//
// # Architecture
//
//	StopsAndStations.json + Transports.json | SQL | MongoDB | HTTP
//	         ↓
//	    [source] + [dataset] (load, validate, build)
//	         ↓
//	    [network] (graph, nearest station, ad hoc points)
//	         ↓
//	    [route] (Dijkstra + exploration trace, segment resolution)
//	         ↓
//	    [planner] (shared graph, snapping, recommendations)
//	         ↓
//	    [render] DOT/SVG/PNG/PDF, [publish] NATS frames
//
// # Quick Start
//
//	g := network.New()
//	g.AddNode(network.Node{Key: "A", Position: geo.Point{Lat: 41.00, Lon: 29.00}})
//	g.AddNode(network.Node{Key: "B", Position: geo.Point{Lat: 41.01, Lon: 29.00}})
//	g.AddEdge(network.Edge{From: "A", To: "B", Weight: 1.1, Mode: network.ModeBus, Minutes: 4})
//
//	res := route.FindPath(g, network.Node{Key: "A"}, network.Node{Key: "B"})
//	segs := route.Resolve(ctx, g, res.Path)
//	for _, f := range res.Frames() {
//	    fmt.Println(f.Index, f.Kind, f.Nodes)
//	}
//
// # Packages
//
// [geo] - great-circle distance.
//
// [network] - the directed multigraph, [network.Nearest] and [network.Attach].
//
// [route] - the search engine, its [route.Trace] and [route.Resolve].
//
// [dataset] - station and segment records, JSON import/export, graph building
// and the line catalog.
//
// [source] - loading a dataset from JSON files (local or remote), PostgreSQL,
// SQLite or MongoDB.
//
// [httputil] - downloads with retries and an on-disk mirror.
//
// [planner] - concurrency-safe routing over a shared, mutable network.
//
// [render] - Graphviz drawings of the network, a trace frame or a path.
//
// [cache] - rendered artifact cache (file, Redis, null).
//
// [publish] - streams trace frames to NATS.
//
// [observability] - hooks the engine, loaders and caches report through.
//
// [config], [errors] and [buildinfo] carry the ambient concerns.
//
// [geo]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/geo
// [network]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/network
// [route]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/route
// [dataset]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/dataset
// [source]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/source
// [httputil]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/httputil
// [planner]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/planner
// [render]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/cache
// [publish]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/publish
// [observability]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/routetrace/pkg/buildinfo
package pkg
