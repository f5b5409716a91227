// Package planner is the routing service shared by the CLI and the HTTP
// server.
//
// A [Planner] owns the network graph and serializes access to it: searches
// hold a read lock, while [Planner.AddStation], [Planner.AddSegment] and
// [Planner.Replace] hold the write lock. Searches between arbitrary
// coordinates never touch the shared graph; when a coordinate is not close
// to a station, the ad hoc point is attached to a private clone.
//
// Every answer is a [Plan]: the exploration trace, the path, its resolved
// segments, and any published line information for those segments.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/routetrace/pkg/cache"
	"github.com/matzehuels/routetrace/pkg/dataset"
	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/geo"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/route"
)

// Keys of ad hoc nodes created by RouteBetween.
const (
	UserStartKey = "UserStart"
	UserEndKey   = "UserEnd"
)

// Options tunes a Planner.
type Options struct {
	// SnapRadiusKm is how close a coordinate must be to a station for the
	// station to be used directly. Zero disables snapping.
	SnapRadiusKm float64
	// Link controls how ad hoc points are connected to the network.
	Link network.LinkOptions
	// SearchTimeout bounds a single search. Zero means no limit.
	SearchTimeout time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		SnapRadiusKm:  0.5,
		Link:          network.LinkOptions{RadiusKm: network.DefaultLinkRadiusKm, WalkingKmh: 5},
		SearchTimeout: 10 * time.Second,
	}
}

// Planner answers route queries against a shared network.
type Planner struct {
	Logger *log.Logger

	mu      sync.RWMutex
	graph   *network.Graph
	catalog *dataset.Catalog
	version string
	opts    Options
}

// New creates a planner over g. A nil catalog disables recommendations and
// a nil logger uses log.Default().
func New(g *network.Graph, catalog *dataset.Catalog, opts Options, logger *log.Logger) *Planner {
	if g == nil {
		g = network.New()
	}
	if catalog == nil {
		catalog = dataset.NewCatalog(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Planner{
		Logger:  logger,
		graph:   g,
		catalog: catalog,
		opts:    opts,
	}
}

// Plan is the answer to one route query.
type Plan struct {
	ID    uuid.UUID    `json:"id"`
	Start network.Node `json:"start"`
	End   network.Node `json:"end"`
	// Visited lists stations in the order the search finalized them.
	Visited         []network.Node           `json:"visited"`
	Path            []network.Node           `json:"path"`
	Segments        []route.Segment          `json:"segments"`
	Recommendations []dataset.Recommendation `json:"recommendations,omitempty"`
	DistanceKm      float64                  `json:"distanceKm"`
	Minutes         float64                  `json:"minutes"`
	Duration        time.Duration            `json:"-"`

	// Trace is the full exploration trace.
	Trace route.Trace `json:"-"`
	// Graph is the private graph the plan was computed on when ad hoc
	// points were attached, and nil otherwise.
	Graph *network.Graph `json:"-"`
}

// Found reports whether a path exists.
func (p *Plan) Found() bool { return len(p.Path) > 0 }

// Frames returns the trace frames followed by the path frame.
func (p *Plan) Frames() []route.Frame {
	return route.Result{Trace: p.Trace, Path: p.Path}.Frames()
}

// Route plans between two stations by key. Unknown keys are a
// STATION_NOT_FOUND error; an unreachable destination is a Plan without a
// path.
func (p *Planner) Route(ctx context.Context, startKey, endKey string) (*Plan, error) {
	if err := errs.ValidateStationKey("start", startKey); err != nil {
		return nil, err
	}
	if err := errs.ValidateStationKey("end", endKey); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	start, ok := p.graph.Node(startKey)
	if !ok {
		return nil, errs.New(errs.ErrCodeStationNotFound, "station %q not found", startKey)
	}
	end, ok := p.graph.Node(endKey)
	if !ok {
		return nil, errs.New(errs.ErrCodeStationNotFound, "station %q not found", endKey)
	}
	return p.plan(ctx, p.graph, start, end)
}

// RouteBetween plans between two coordinates. Each coordinate snaps to the
// nearest station within SnapRadiusKm; otherwise it becomes an ad hoc node
// (UserStart or UserEnd) linked by walking edges to nearby stations in a
// private copy of the graph.
func (p *Planner) RouteBetween(ctx context.Context, from, to geo.Point) (*Plan, error) {
	for _, pt := range []geo.Point{from, to} {
		if err := errs.ValidateCoordinate(pt.Lat, pt.Lon); err != nil {
			return nil, err
		}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	start, startOK := p.snap(from)
	end, endOK := p.snap(to)
	if startOK && endOK {
		return p.plan(ctx, p.graph, start, end)
	}

	g := p.graph.Clone()
	if !startOK {
		start = network.Node{Key: UserStartKey, Position: from, Category: "user"}
		n, err := network.Attach(g, start, p.opts.Link)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "attach start")
		}
		p.Logger.Debug("attached ad hoc start", "position", from, "links", n)
	}
	if !endOK {
		end = network.Node{Key: UserEndKey, Position: to, Category: "user"}
		n, err := network.Attach(g, end, p.opts.Link)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "attach end")
		}
		p.Logger.Debug("attached ad hoc end", "position", to, "links", n)
	}

	plan, err := p.plan(ctx, g, start, end)
	if err != nil {
		return nil, err
	}
	plan.Graph = g
	return plan, nil
}

func (p *Planner) snap(pt geo.Point) (network.Node, bool) {
	if p.opts.SnapRadiusKm <= 0 {
		return network.Node{}, false
	}
	return network.Nearest(p.graph, pt, p.opts.SnapRadiusKm)
}

// plan runs the search on g. The caller holds at least the read lock.
func (p *Planner) plan(ctx context.Context, g *network.Graph, start, end network.Node) (*Plan, error) {
	if p.opts.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.SearchTimeout)
		defer cancel()
	}

	began := time.Now()
	res, err := route.FindPathContext(ctx, g, start, end)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.Wrap(errs.ErrCodeTimeout, err, "search %s -> %s", start.Key, end.Key)
		}
		return nil, err
	}

	segs := route.Resolve(ctx, g, res.Path)
	km, minutes := route.Totals(segs)
	plan := &Plan{
		ID:         uuid.New(),
		Start:      res.Start,
		End:        res.End,
		Visited:    res.Trace.Order(),
		Path:       res.Path,
		Segments:   segs,
		DistanceKm: km,
		Minutes:    minutes,
		Duration:   time.Since(began),
		Trace:      res.Trace,
	}
	if plan.Path == nil {
		plan.Path = []network.Node{}
	}
	if plan.Segments == nil {
		plan.Segments = []route.Segment{}
	}

	for _, s := range segs {
		if s.Inferred {
			p.Logger.Warn("no edge between consecutive path stations", "from", s.From.Key, "to", s.To.Key)
			continue
		}
		plan.Recommendations = append(plan.Recommendations, p.catalog.Lookup(s.From.Key, s.To.Key)...)
	}

	p.Logger.Debug("route planned",
		"id", plan.ID,
		"start", start.Key,
		"end", end.Key,
		"visited", res.Trace.Len(),
		"found", plan.Found(),
		"km", km,
		"duration", plan.Duration)
	return plan, nil
}

// Stations returns all stations sorted by key.
func (p *Planner) Stations() []network.Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph.Nodes()
}

// Stats returns the node and edge counts of the shared graph.
func (p *Planner) Stats() (nodes, edges int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph.NodeCount(), p.graph.EdgeCount()
}

// View calls fn with the shared graph under the read lock. fn must not
// retain or modify g.
func (p *Planner) View(fn func(g *network.Graph) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return fn(p.graph)
}

// AddStation inserts a station. Adding an existing key is a no-op.
func (p *Planner) AddStation(n network.Node) error {
	if err := errs.ValidateStationKey("name", n.Key); err != nil {
		return err
	}
	if err := errs.ValidateCoordinate(n.Position.Lat, n.Position.Lon); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.graph.Has(n.Key) {
		return nil
	}
	if err := p.graph.AddNode(n); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "add station")
	}
	p.version = ""
	p.Logger.Info("station added", "name", n.Key)
	return nil
}

// AddSegment links two existing stations in both directions, weighted by
// their great-circle distance, and records the segment in the catalog.
func (p *Planner) AddSegment(s dataset.Segment) error {
	if s.Minutes < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "segment duration cannot be negative")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	from, ok := p.graph.Node(s.From)
	if !ok {
		return errs.New(errs.ErrCodeStationNotFound, "station %q not found", s.From)
	}
	to, ok := p.graph.Node(s.To)
	if !ok {
		return errs.New(errs.ErrCodeStationNotFound, "station %q not found", s.To)
	}

	e := network.Edge{
		From:    from.Key,
		To:      to.Key,
		Weight:  from.Position.DistanceTo(to.Position),
		Mode:    network.ParseMode(s.Tip),
		Minutes: s.Minutes,
	}
	if err := p.graph.AddEdge(e); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "add segment")
	}
	e.From, e.To = e.To, e.From
	if err := p.graph.AddEdge(e); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "add segment")
	}
	p.catalog.Add(s)
	p.version = ""
	p.Logger.Info("segment added", "from", s.From, "to", s.To, "mode", e.Mode)
	return nil
}

// Replace swaps in a new network, for example after a reload.
func (p *Planner) Replace(g *network.Graph, catalog *dataset.Catalog) {
	if g == nil {
		g = network.New()
	}
	if catalog == nil {
		catalog = dataset.NewCatalog(nil)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.graph = g
	p.catalog = catalog
	p.version = ""
	p.Logger.Info("network replaced", "stations", g.NodeCount(), "edges", g.EdgeCount())
}

// Version returns a content hash of the shared graph. It changes whenever
// the graph does and keys cached drawings of it.
func (p *Planner) Version() string {
	p.mu.RLock()
	v := p.version
	p.mu.RUnlock()
	if v != "" {
		return v
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.version == "" {
		data, _ := json.Marshal(struct {
			Nodes []network.Node `json:"nodes"`
			Edges []network.Edge `json:"edges"`
		}{p.graph.Nodes(), p.graph.Edges()})
		p.version = cache.Hash(data)
	}
	return p.version
}
