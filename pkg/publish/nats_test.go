package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/routetrace/pkg/dataset"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/planner"
	"github.com/matzehuels/routetrace/pkg/route"
)

type sent struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs    []sent
	failAt  int
	flushed bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.failAt > 0 && len(c.msgs)+1 == c.failAt {
		return errors.New("boom")
	}
	c.msgs = append(c.msgs, sent{subject, data})
	return nil
}

func (c *fakeConn) FlushWithContext(context.Context) error {
	c.flushed = true
	return nil
}

type fakeMetrics struct {
	published, errs, observed int
}

func (m *fakeMetrics) NATSPublishedInc()            { m.published++ }
func (m *fakeMetrics) NATSPublishErrInc()           { m.errs++ }
func (m *fakeMetrics) PublishObserve(time.Duration) { m.observed++ }
func (m *fakeMetrics) NATSSetConnected(bool)        {}

func testPlan(t *testing.T) *planner.Plan {
	t.Helper()
	ds := &dataset.Dataset{
		Stations: []dataset.Station{
			{Name: "A", Latitude: 41.00, Longitude: 29.00},
			{Name: "B", Latitude: 41.01, Longitude: 29.00},
		},
		Segments: []dataset.Segment{{From: "A", To: "B", Tip: "metro", Minutes: 3}},
	}
	g, _, err := dataset.Build(context.Background(), ds, dataset.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	p := planner.New(g, nil, planner.DefaultOptions(), log.New(io.Discard))
	plan, err := p.Route(context.Background(), "A", "B")
	if err != nil {
		t.Fatal(err)
	}
	return plan
}

func TestPublishTrace(t *testing.T) {
	c := &fakeConn{}
	m := &fakeMetrics{}
	p := newPublisher(c, "", m, log.New(io.Discard))
	plan := testPlan(t)

	if err := p.PublishTrace(context.Background(), plan); err != nil {
		t.Fatalf("PublishTrace: %v", err)
	}

	frames := plan.Frames()
	if len(c.msgs) != len(frames) {
		t.Fatalf("published %d messages, want %d", len(c.msgs), len(frames))
	}
	if !c.flushed {
		t.Error("connection not flushed")
	}
	if m.published != len(frames) || m.observed != len(frames) || m.errs != 0 {
		t.Errorf("metrics = %+v", m)
	}

	wantSubject := "routetrace.trace." + plan.ID.String()
	for i, s := range c.msgs {
		if s.subject != wantSubject {
			t.Errorf("msg %d subject = %q, want %q", i, s.subject, wantSubject)
		}
		var msg FrameMessage
		if err := json.Unmarshal(s.data, &msg); err != nil {
			t.Fatalf("msg %d: %v", i, err)
		}
		if msg.Index != i || msg.Total != len(frames) || msg.PlanID != plan.ID.String() {
			t.Errorf("msg %d = %+v", i, msg)
		}
		if i < len(frames)-1 && (msg.Kind != route.FrameVisited || len(msg.Nodes) != i+1) {
			t.Errorf("msg %d should be a visited frame of %d nodes: %+v", i, i+1, msg)
		}
	}

	var last FrameMessage
	_ = json.Unmarshal(c.msgs[len(c.msgs)-1].data, &last)
	if last.Kind != route.FramePath || len(last.Nodes) != 2 || last.Minutes != 3 || last.DistanceKm == 0 {
		t.Errorf("path message = %+v", last)
	}
}

func TestPublishTraceError(t *testing.T) {
	c := &fakeConn{failAt: 2}
	m := &fakeMetrics{}
	p := newPublisher(c, "custom", m, log.New(io.Discard))

	err := p.PublishTrace(context.Background(), testPlan(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(c.msgs) != 1 || m.errs != 1 || c.flushed {
		t.Errorf("msgs=%d errs=%d flushed=%v", len(c.msgs), m.errs, c.flushed)
	}
}

func TestPublishTraceCancelled(t *testing.T) {
	c := &fakeConn{}
	p := newPublisher(c, "", nil, log.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.PublishTrace(ctx, testPlan(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(c.msgs) != 0 {
		t.Errorf("published %d messages after cancel", len(c.msgs))
	}
}

func TestPublishEmptyPlan(t *testing.T) {
	c := &fakeConn{}
	p := newPublisher(c, "", nil, log.New(io.Discard))
	plan := &planner.Plan{Path: []network.Node{}}
	if err := p.PublishTrace(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	if len(c.msgs) != 0 {
		t.Errorf("empty trace published %d messages", len(c.msgs))
	}
}

func TestSubjectToken(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc", "abc"},
		{" a b ", "a_b"},
		{"a.b>c*d/e", "a_b_c_d_e"},
		{"", "_"},
	}
	for _, tt := range tests {
		if got := subjectToken(tt.in); got != tt.want {
			t.Errorf("subjectToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewNATSPublisherUnreachable(t *testing.T) {
	_, err := NewNATSPublisher(Options{URL: "nats://127.0.0.1:1", Logger: log.New(io.Discard)})
	if err == nil {
		t.Error("expected connection error")
	}
}
