package cache

// Keyer derives cache keys from stage inputs.
type Keyer interface {
	// TreeKey is the key of a tree built from markers with the given hash.
	TreeKey(markersHash string, gridUnit float64) string

	// ArtifactKey is the key of a tree encoded with the given codec.
	ArtifactKey(treeHash, format string) string
}

// DefaultKeyer hashes every key input into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TreeKey(markersHash string, gridUnit float64) string {
	return hashKey("tree", markersHash, formatFloat(gridUnit))
}

func (DefaultKeyer) ArtifactKey(treeHash, format string) string {
	return hashKey("artifact", treeHash, format)
}
