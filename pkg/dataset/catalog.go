package dataset

import "github.com/matzehuels/routetrace/pkg/network"

// Recommendation is the published description of a hop between two stations.
type Recommendation struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Mode        network.Mode `json:"mode"`
	Line        string       `json:"line,omitempty"`
	Description string       `json:"description,omitempty"`
	Minutes     float64      `json:"minutes"`
}

type pair struct{ from, to string }

// Catalog indexes segment records by (from, to). Lookups are directional
// first; a reverse match is returned when no forward record exists, since
// segments are travelled both ways.
type Catalog struct {
	byPair map[pair][]Recommendation
}

// NewCatalog builds a catalog from segments, keeping file order per pair.
func NewCatalog(segments []Segment) *Catalog {
	c := &Catalog{byPair: make(map[pair][]Recommendation)}
	for _, s := range segments {
		c.Add(s)
	}
	return c
}

// Lookup returns the records for from->to. A nil catalog has no records.
func (c *Catalog) Lookup(from, to string) []Recommendation {
	if c == nil {
		return nil
	}
	if recs, ok := c.byPair[pair{from, to}]; ok {
		return recs
	}
	return c.byPair[pair{to, from}]
}

// Add appends a record for its (from, to) pair.
func (c *Catalog) Add(s Segment) {
	if c.byPair == nil {
		c.byPair = make(map[pair][]Recommendation)
	}
	k := pair{s.From, s.To}
	c.byPair[k] = append(c.byPair[k], Recommendation{
		From:        s.From,
		To:          s.To,
		Mode:        network.ParseMode(s.Tip),
		Line:        s.Line,
		Description: s.Description,
		Minutes:     s.Minutes,
	})
}

// Len returns the number of indexed pairs.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byPair)
}
