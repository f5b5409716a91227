// Package publish streams search traces to NATS so that map clients can
// animate a search while, or after, it runs.
//
// Each plan is published on "<prefix>.<plan id>" as one message per trace
// frame, in order, ending with the path frame:
//
//	{"planId":"…","index":0,"total":5,"kind":"visited","nodes":[{"id":"Taksim","latitude":41.03,"longitude":28.98}]}
//	…
//	{"planId":"…","index":4,"total":5,"kind":"path","nodes":[…],"distanceKm":3.2,"minutes":11}
//
// Subscribers to "<prefix>.>" receive every plan.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"

	"github.com/matzehuels/routetrace/pkg/planner"
	"github.com/matzehuels/routetrace/pkg/route"
)

// Metrics receives publisher events. internal/metrics implements it.
type Metrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSPublisher publishes trace frames.
type NATSPublisher struct {
	nc      *nats.Conn
	conn    conn
	prefix  string
	metrics Metrics
	logger  *log.Logger
}

// Options configures a NATSPublisher.
type Options struct {
	URL           string
	ClientName    string
	SubjectPrefix string
	Metrics       Metrics
	Logger        *log.Logger
}

// NewNATSPublisher connects to opts.URL.
func NewNATSPublisher(opts Options) (*NATSPublisher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	m := opts.Metrics
	name := opts.ClientName
	if name == "" {
		name = "routetrace"
	}

	nc, err := nats.Connect(opts.URL,
		nats.Name(name),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Debug("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", opts.URL, err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	p := newPublisher(nc, opts.SubjectPrefix, m, logger)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, prefix string, m Metrics, logger *log.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = "routetrace.trace"
	}
	return &NATSPublisher{conn: c, prefix: prefix, metrics: m, logger: logger}
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// NodeMessage is a station inside a frame message.
type NodeMessage struct {
	ID  string  `json:"id"`
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// FrameMessage is one published trace frame.
type FrameMessage struct {
	PlanID     string          `json:"planId"`
	Index      int             `json:"index"`
	Total      int             `json:"total"`
	Kind       route.FrameKind `json:"kind"`
	Nodes      []NodeMessage   `json:"nodes"`
	DistanceKm float64         `json:"distanceKm,omitempty"`
	Minutes    float64         `json:"minutes,omitempty"`
}

// Subject returns the subject plan frames are published on.
func (p *NATSPublisher) Subject(planID string) string {
	return p.prefix + "." + subjectToken(planID)
}

// PublishTrace publishes every frame of plan and flushes the connection.
// It stops at the first error or when ctx is cancelled.
func (p *NATSPublisher) PublishTrace(ctx context.Context, plan *planner.Plan) error {
	subject := p.Subject(plan.ID.String())
	frames := plan.Frames()

	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := FrameMessage{
			PlanID: plan.ID.String(),
			Index:  f.Index,
			Total:  len(frames),
			Kind:   f.Kind,
			Nodes:  make([]NodeMessage, len(f.Nodes)),
		}
		for i, n := range f.Nodes {
			msg.Nodes[i] = NodeMessage{ID: n.Key, Lat: n.Position.Lat, Lon: n.Position.Lon}
		}
		if f.Kind == route.FramePath {
			msg.DistanceKm = plan.DistanceKm
			msg.Minutes = plan.Minutes
		}
		if err := p.publish(subject, msg); err != nil {
			return fmt.Errorf("publish frame %d: %w", f.Index, err)
		}
	}

	p.logger.Debug("published trace", "subject", subject, "frames", len(frames))
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) publish(subject string, msg FrameMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	start := time.Now()
	err = p.conn.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

// subjectToken makes s safe as a single NATS subject token.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
