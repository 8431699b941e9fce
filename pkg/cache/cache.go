// Package cache stores feed responses, simulated snapshots and rendered
// artifacts between runs.
//
// Three backends implement [Cache]: [NullCache] (caching disabled),
// [FileCache] (the CLI default under ~/.cache/collage) and [RedisCache]
// (shared by server replicas). Keys are built by a [Keyer] so every
// component hashes its inputs the same way:
//
//	k := cache.NewDefaultKeyer()
//	key := k.SnapshotKey(feedHash, cache.SnapshotKeyOpts{Frames: 300, Seed: 42})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/collage/pkg/observability"
)

// TTLs for each kind of cached value.
const (
	TTLFeed     = time.Hour
	TTLSnapshot = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A ttl of 0 never expires.
// Get reports a miss as (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and decodes it into v. keyType labels the lookup for
// cache hooks.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) (bool, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}

// =============================================================================
// Keys
// =============================================================================

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey identifies a raw HTTP response body.
	HTTPKey(namespace, key string) string
	// FeedKey identifies the records a source returned for a query.
	FeedKey(source string, opts FeedKeyOpts) string
	// SnapshotKey identifies a simulated scene.
	SnapshotKey(feedHash string, opts SnapshotKeyOpts) string
	// ArtifactKey identifies a rendered snapshot.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// FeedKeyOpts are the query parameters of a feed lookup.
type FeedKeyOpts struct {
	Tag   string `json:"tag,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// SnapshotKeyOpts are the simulation inputs that change the resulting scene.
type SnapshotKeyOpts struct {
	Frames      int     `json:"frames"`
	Seed        uint64  `json:"seed"`
	Damping     float64 `json:"damping"`
	MaxStep     float64 `json:"max_step"`
	LabelBuffer float64 `json:"label_buffer"`
	GrowthSteps int     `json:"growth_steps"`
	TargetW     float64 `json:"target_w"`
	TargetH     float64 `json:"target_h"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Select      string  `json:"select,omitempty"`
	Touch       bool    `json:"touch,omitempty"`
}

// ArtifactKeyOpts are the render inputs of an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Labels   bool    `json:"labels"`
	Images   bool    `json:"images,omitempty"`
	Viewport bool    `json:"viewport,omitempty"`
	Title    string  `json:"title,omitempty"`
	Scale    float64 `json:"scale"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) FeedKey(source string, opts FeedKeyOpts) string {
	return hashKey("feed", source, opts)
}

func (DefaultKeyer) SnapshotKey(feedHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", feedHash, opts)
}

func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}
