package network

import (
	"strings"

	"github.com/matzehuels/routetrace/pkg/geo"
)

// Mode is the transport used to traverse an edge.
type Mode string

const (
	ModeWalking Mode = "walking"
	ModeBus     Mode = "bus"
	ModeMetro   Mode = "metro"
	ModeTrain   Mode = "train"
	ModeTaxi    Mode = "taxi"
	ModeUnknown Mode = "unknown"
)

// modeAliases maps source vocabulary to modes. Data files use Turkish
// labels (yurume, otobus, taksi); English names are accepted as well.
var modeAliases = map[string]Mode{
	"yurume":  ModeWalking,
	"yürüme":  ModeWalking,
	"walking": ModeWalking,
	"walk":    ModeWalking,
	"otobus":  ModeBus,
	"otobüs":  ModeBus,
	"bus":     ModeBus,
	"metro":   ModeMetro,
	"train":   ModeTrain,
	"tren":    ModeTrain,
	"taksi":   ModeTaxi,
	"taxi":    ModeTaxi,
}

// ParseMode maps a transport label to a Mode. Matching is case-insensitive
// and ignores surrounding whitespace. Unrecognized labels map to ModeUnknown.
func ParseMode(s string) Mode {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m
	}
	return ModeUnknown
}

// Modes returns every known mode except ModeUnknown, in display order.
func Modes() []Mode {
	return []Mode{ModeWalking, ModeBus, ModeMetro, ModeTrain, ModeTaxi}
}

// Node is a station, stop, or ad hoc point. Identity is Key alone.
type Node struct {
	Key      string    `json:"id"`
	Position geo.Point `json:"position"`
	// Category is the station type from the source data ("bus", "metro", ...).
	// Empty when unknown.
	Category string `json:"type,omitempty"`
}

// IsZero reports whether n carries no key and therefore names no node.
func (n Node) IsZero() bool { return n.Key == "" }

// Edge is a directed connection owned by the adjacency list of From.
type Edge struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Weight  float64 `json:"weight"` // km, used for ranking
	Mode    Mode    `json:"mode"`
	Minutes float64 `json:"minutes"` // informational only
}
