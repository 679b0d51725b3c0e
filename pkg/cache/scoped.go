package cache

// ScopedKeyer wraps a Keyer with a prefix, so caches shared between tool
// versions or projects never hand one another stale entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "gridtree:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TreeKey generates a prefixed key for tree caching.
func (k *ScopedKeyer) TreeKey(markersHash string, gridUnit float64) string {
	return k.prefix + k.inner.TreeKey(markersHash, gridUnit)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(treeHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(treeHash, format)
}
