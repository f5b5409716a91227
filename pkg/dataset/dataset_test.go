package dataset

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/geo"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/observability"
)

const stationsJSON = `[
  {"name": "Taksim", "latitude": 41.0369, "longitude": 28.9850, "type": "metro"},
  {"name": "Sisli", "latitude": 41.0602, "longitude": 28.9877},
  {"name": "Besiktas", "latitude": 41.0422, "longitude": 29.0083, "type": "bus"}
]`

const segmentsJSON = `{"segments": [
  {"from": "Taksim", "to": "Sisli", "tip": "metro", "sure_dk": 4, "hat": "M2", "aciklama": "Yenikapi - Haciosman"},
  {"from": "Taksim", "to": "Besiktas", "tip": "otobus", "sure_dk": 12, "hat": "30D"},
  {"from": "Besiktas", "to": "Kadikoy", "tip": "vapur", "sure_dk": 20}
]}`

func sample(t *testing.T) *Dataset {
	t.Helper()
	stations, err := ReadStations(strings.NewReader(stationsJSON))
	if err != nil {
		t.Fatalf("ReadStations: %v", err)
	}
	segments, err := ReadSegments(strings.NewReader(segmentsJSON))
	if err != nil {
		t.Fatalf("ReadSegments: %v", err)
	}
	return &Dataset{Stations: stations, Segments: segments}
}

func TestRead(t *testing.T) {
	ds := sample(t)
	if len(ds.Stations) != 3 || len(ds.Segments) != 3 {
		t.Fatalf("got %d stations, %d segments", len(ds.Stations), len(ds.Segments))
	}
	if s := ds.Stations[0]; s.Name != "Taksim" || s.Type != "metro" || s.Latitude != 41.0369 {
		t.Errorf("station 0 = %+v", s)
	}
	if s := ds.Segments[0]; s.Minutes != 4 || s.Line != "M2" || s.Description != "Yenikapi - Haciosman" {
		t.Errorf("segment 0 = %+v", s)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		segments bool
	}{
		{"StationsNotArray", `{"name":"x"}`, false},
		{"StationsTruncated", `[{"name":`, false},
		{"SegmentsBareArray", `[]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.segments {
				_, err = ReadSegments(strings.NewReader(tt.input))
			} else {
				_, err = ReadStations(strings.NewReader(tt.input))
			}
			if !errs.Is(err, errs.ErrCodeInvalidFormat) {
				t.Errorf("err = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ds      Dataset
		wantErr bool
	}{
		{"Valid", Dataset{Stations: []Station{{Name: "A", Latitude: 1, Longitude: 2}}}, false},
		{"EmptyName", Dataset{Stations: []Station{{Name: " "}}}, true},
		{"Duplicate", Dataset{Stations: []Station{{Name: "A"}, {Name: "A"}}}, true},
		{"BadLatitude", Dataset{Stations: []Station{{Name: "A", Latitude: 91}}}, true},
		{"MissingEndpoint", Dataset{Segments: []Segment{{From: "A"}}}, true},
		{"NegativeMinutes", Dataset{Segments: []Segment{{From: "A", To: "B", Minutes: -1}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeInvalidDataset) {
				t.Errorf("code = %s, want INVALID_DATASET", errs.GetCode(err))
			}
		})
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	stations := filepath.Join(dir, "StopsAndStations.json")
	segments := filepath.Join(dir, "Transports.json")

	want := sample(t)
	if err := Export(want, stations, segments); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, err := Import(stations, segments)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.Hash() != want.Hash() {
		t.Error("round trip changed the dataset")
	}
}

func TestImportMissingFile(t *testing.T) {
	dir := t.TempDir()
	segments := filepath.Join(dir, "Transports.json")
	if err := os.WriteFile(segments, []byte(`{"segments":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Import(filepath.Join(dir, "missing.json"), segments)
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSegments(nil, &buf); err != nil {
		t.Fatal(err)
	}
	segs, err := ReadSegments(&buf)
	if err != nil || len(segs) != 0 {
		t.Errorf("ReadSegments = %v, %v", segs, err)
	}
}

func TestHashOrderIndependent(t *testing.T) {
	a := sample(t)
	b := sample(t)
	b.Stations[0], b.Stations[2] = b.Stations[2], b.Stations[0]
	b.Segments[0], b.Segments[1] = b.Segments[1], b.Segments[0]
	if a.Hash() != b.Hash() {
		t.Error("hash depends on record order")
	}

	b.Segments[0].Minutes++
	if a.Hash() == b.Hash() {
		t.Error("hash ignores segment content")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("hash length = %d, want 64", len(a.Hash()))
	}
}

type skipRecorder struct {
	observability.NoopSourceHooks
	skipped []string
	loads   int
}

func (r *skipRecorder) OnSkippedSegment(_ context.Context, from, to string) {
	r.skipped = append(r.skipped, from+"->"+to)
}

func (r *skipRecorder) OnLoad(context.Context, string, int, int, time.Duration, error) { r.loads++ }

func TestBuild(t *testing.T) {
	rec := &skipRecorder{}
	observability.SetSourceHooks(rec)
	defer observability.Reset()

	g, rep, err := Build(context.Background(), sample(t), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rep.Stations != 3 || rep.Segments != 2 || rep.Skipped != 1 || rep.Edges != 4 {
		t.Errorf("report = %+v", rep)
	}
	if g.Has("Kadikoy") {
		t.Error("skipped segment must not create a node")
	}
	if len(rec.skipped) != 1 || rec.skipped[0] != "Besiktas->Kadikoy" {
		t.Errorf("skipped = %v", rec.skipped)
	}
	if rec.loads != 1 {
		t.Errorf("OnLoad calls = %d, want 1", rec.loads)
	}

	want := geo.Distance(41.0369, 28.9850, 41.0602, 28.9877)
	for _, pair := range [][2]string{{"Taksim", "Sisli"}, {"Sisli", "Taksim"}} {
		edges := g.Neighbors(pair[0])
		var found bool
		for _, e := range edges {
			if e.To != pair[1] {
				continue
			}
			found = true
			if math.Abs(e.Weight-want) > 1e-12 || e.Mode != network.ModeMetro || e.Minutes != 4 {
				t.Errorf("%s->%s edge = %+v", pair[0], pair[1], e)
			}
		}
		if !found {
			t.Errorf("missing edge %s->%s", pair[0], pair[1])
		}
	}

	taksim, _ := g.Node("Taksim")
	if taksim.Category != "metro" {
		t.Errorf("category = %q, want metro", taksim.Category)
	}
}

func TestBuildDirected(t *testing.T) {
	g, rep, err := Build(context.Background(), sample(t), BuildOptions{Directed: true})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Edges != 2 || len(g.Neighbors("Sisli")) != 0 {
		t.Errorf("directed build added reverse edges: %+v", rep)
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog(sample(t).Segments)

	tests := []struct {
		from, to string
		wantLine string
		wantMode network.Mode
		wantN    int
	}{
		{"Taksim", "Sisli", "M2", network.ModeMetro, 1},
		{"Sisli", "Taksim", "M2", network.ModeMetro, 1},
		{"Taksim", "Besiktas", "30D", network.ModeBus, 1},
		{"Sisli", "Besiktas", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.from+"-"+tt.to, func(t *testing.T) {
			recs := c.Lookup(tt.from, tt.to)
			if len(recs) != tt.wantN {
				t.Fatalf("len = %d, want %d", len(recs), tt.wantN)
			}
			if tt.wantN > 0 && (recs[0].Line != tt.wantLine || recs[0].Mode != tt.wantMode) {
				t.Errorf("rec = %+v", recs[0])
			}
		})
	}

	var nilCatalog *Catalog
	if nilCatalog.Lookup("a", "b") != nil || nilCatalog.Len() != 0 {
		t.Error("nil catalog should be empty")
	}
}
