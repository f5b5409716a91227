package dataset

import (
	"context"
	"time"

	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/observability"
)

// BuildOptions configures [Build].
type BuildOptions struct {
	// Directed adds only the from->to edge of each segment. By default both
	// directions are added.
	Directed bool
	// Source labels the OnLoad event; "json" when empty.
	Source string
}

// Report summarizes a build.
type Report struct {
	Stations int
	Segments int
	Edges    int
	// Skipped counts segments with an endpoint that is not a known station.
	Skipped int
}

// Build constructs a graph from ds. Edge weights are the great-circle
// distance between the segment endpoints in kilometres; the segment's
// duration is carried as informational minutes.
func Build(ctx context.Context, ds *Dataset, opts BuildOptions) (*network.Graph, Report, error) {
	start := time.Now()
	source := opts.Source
	if source == "" {
		source = "json"
	}

	g, rep, err := build(ctx, ds, opts)
	observability.Source().OnLoad(ctx, source, rep.Stations, rep.Segments, time.Since(start), err)
	return g, rep, err
}

func build(ctx context.Context, ds *Dataset, opts BuildOptions) (*network.Graph, Report, error) {
	var rep Report
	g := network.New()

	for _, s := range ds.Stations {
		n := network.Node{Key: s.Name, Position: s.Point(), Category: s.Type}
		if err := g.AddNode(n); err != nil {
			return nil, rep, errs.Wrap(errs.ErrCodeInvalidDataset, err, "station %q", s.Name)
		}
	}
	rep.Stations = g.NodeCount()

	for _, s := range ds.Segments {
		from, okFrom := g.Node(s.From)
		to, okTo := g.Node(s.To)
		if !okFrom || !okTo {
			rep.Skipped++
			observability.Source().OnSkippedSegment(ctx, s.From, s.To)
			continue
		}

		e := network.Edge{
			From:    from.Key,
			To:      to.Key,
			Weight:  from.Position.DistanceTo(to.Position),
			Mode:    network.ParseMode(s.Tip),
			Minutes: s.Minutes,
		}
		if err := g.AddEdge(e); err != nil {
			return nil, rep, errs.Wrap(errs.ErrCodeInvalidDataset, err, "segment %s->%s", s.From, s.To)
		}
		if !opts.Directed {
			e.From, e.To = e.To, e.From
			if err := g.AddEdge(e); err != nil {
				return nil, rep, errs.Wrap(errs.ErrCodeInvalidDataset, err, "segment %s->%s", s.To, s.From)
			}
		}
		rep.Segments++
	}
	rep.Edges = g.EdgeCount()
	return g, rep, nil
}
