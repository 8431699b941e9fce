package cache

// ScopedKeyer wraps a Keyer with a prefix so several collages can share one
// Redis instance without colliding, e.g. one scope per server deployment.
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

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) FeedKey(source string, opts FeedKeyOpts) string {
	return k.prefix + k.inner.FeedKey(source, opts)
}

func (k *ScopedKeyer) SnapshotKey(feedHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(feedHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(snapshotHash, opts)
}
