package cache

// Artifact kinds.
const (
	ArtifactNetwork = "network"
	ArtifactTrace   = "trace"
	ArtifactPath    = "path"
)

// ArtifactKeyOpts identifies one drawing of a network.
type ArtifactKeyOpts struct {
	Kind   string `json:"kind"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Step   int    `json:"step,omitempty"`
	Format string `json:"format"`
}

// Keyer names cache entries.
type Keyer interface {
	// ArtifactKey returns the key of a drawing of the network with the given
	// dataset hash.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}
