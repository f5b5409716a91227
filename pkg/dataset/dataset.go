package dataset

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/matzehuels/routetrace/pkg/cache"
	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/geo"
)

// Station is one record of the stations file.
type Station struct {
	Name      string  `json:"name" bson:"name"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
	Type      string  `json:"type,omitempty" bson:"type,omitempty"`
}

// Point returns the station position.
func (s Station) Point() geo.Point { return geo.Point{Lat: s.Latitude, Lon: s.Longitude} }

// Segment is one record of the segments file.
type Segment struct {
	From        string  `json:"from" bson:"from"`
	To          string  `json:"to" bson:"to"`
	Tip         string  `json:"tip" bson:"tip"`
	Minutes     float64 `json:"sure_dk" bson:"sure_dk"`
	Line        string  `json:"hat,omitempty" bson:"hat,omitempty"`
	Description string  `json:"aciklama,omitempty" bson:"aciklama,omitempty"`
}

// Dataset is a complete network description.
type Dataset struct {
	Stations []Station
	Segments []Segment
}

// Validate checks station names and coordinates and rejects duplicate
// station names. Segments are not checked against stations here; [Build]
// skips the ones it cannot place.
func (d *Dataset) Validate() error {
	seen := make(map[string]bool, len(d.Stations))
	for i, s := range d.Stations {
		if strings.TrimSpace(s.Name) == "" {
			return errs.New(errs.ErrCodeInvalidDataset, "station %d: empty name", i)
		}
		if seen[s.Name] {
			return errs.New(errs.ErrCodeInvalidDataset, "station %q: duplicate name", s.Name)
		}
		seen[s.Name] = true
		if err := errs.ValidateCoordinate(s.Latitude, s.Longitude); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidDataset, err, "station %q", s.Name)
		}
	}
	for i, s := range d.Segments {
		if s.From == "" || s.To == "" {
			return errs.New(errs.ErrCodeInvalidDataset, "segment %d: missing endpoint", i)
		}
		if s.Minutes < 0 {
			return errs.New(errs.ErrCodeInvalidDataset, "segment %s->%s: negative duration", s.From, s.To)
		}
	}
	return nil
}

// Hash returns a content hash of the dataset, independent of record order.
// It is used to key cached artifacts derived from the network.
func (d *Dataset) Hash() string {
	stations := slices.Clone(d.Stations)
	slices.SortFunc(stations, func(a, b Station) int { return strings.Compare(a.Name, b.Name) })
	segments := slices.Clone(d.Segments)
	slices.SortFunc(segments, compareSegments)

	data, _ := json.Marshal(struct {
		Stations []Station `json:"stations"`
		Segments []Segment `json:"segments"`
	}{stations, segments})
	return cache.Hash(data)
}

func compareSegments(a, b Segment) int {
	if c := strings.Compare(a.From, b.From); c != 0 {
		return c
	}
	if c := strings.Compare(a.To, b.To); c != 0 {
		return c
	}
	if c := strings.Compare(a.Tip, b.Tip); c != 0 {
		return c
	}
	if a.Minutes != b.Minutes {
		if a.Minutes < b.Minutes {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Line, b.Line); c != 0 {
		return c
	}
	return strings.Compare(a.Description, b.Description)
}
