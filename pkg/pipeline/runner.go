package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/cache"
	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/feed"
	"github.com/matzehuels/collage/pkg/observability"
	"github.com/matzehuels/collage/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → simulate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src feed.Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	recs, err := Fetch(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	ds := feed.Descriptors(recs)
	result.Stats.Records = len(ds)

	r.Logger.Info("fetched records", "records", len(ds), "tag", opts.Tag)

	// Stage 2: Load and simulate
	snap, rep, hit, err := r.SimulateWithCacheInfo(ctx, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	result.Snapshot = snap
	result.Report = rep.BatchReport
	result.FeedHash = rep.FeedHash
	result.Stats.Items = len(snap.Items)
	result.Stats.Overlaps = len(sink.Overlaps(snap))
	result.Stats.LoadTime = rep.LoadTime
	result.Stats.SimulateTime = rep.SimulateTime
	result.CacheInfo.SnapshotHit = hit

	r.Logger.Info("simulated collage",
		"items", len(snap.Items),
		"rejected", rep.Rejected,
		"frames", opts.Frames,
		"overlaps", result.Stats.Overlaps,
		"duration", rep.LoadTime+rep.SimulateTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, snapHash, renderHit, err := r.RenderWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.SnapshotHash = snapHash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SimulateReport describes how a snapshot was produced.
type SimulateReport struct {
	collage.BatchReport
	FeedHash     string
	LoadTime     time.Duration
	SimulateTime time.Duration
}

// SimulateWithCacheInfo loads and simulates ds with caching and returns
// cache hit info. On a hit the report carries only the feed hash.
func (r *Runner) SimulateWithCacheInfo(ctx context.Context, ds []collage.Descriptor, opts Options) (collage.Snapshot, SimulateReport, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSimulate(); err != nil {
		return collage.Snapshot{}, SimulateReport{}, false, err
	}

	feedHash, err := cache.HashJSON(ds)
	if err != nil {
		return collage.Snapshot{}, SimulateReport{}, false, fmt.Errorf("hash feed: %w", err)
	}
	rep := SimulateReport{FeedHash: feedHash}
	cacheKey := r.Keyer.SnapshotKey(feedHash, opts.SnapshotKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		var snap collage.Snapshot
		if hit, err := cache.GetJSON(ctx, r.Cache, "snapshot", cacheKey, &snap); err == nil && hit {
			return snap, rep, true, nil
		}
	}

	c, sim, err := Simulate(ctx, ds, opts)
	if err != nil {
		return collage.Snapshot{}, SimulateReport{}, false, err
	}
	sim.FeedHash = feedHash
	snap := c.Snapshot()

	if err := cache.SetJSON(ctx, r.Cache, "snapshot", cacheKey, snap, cache.TTLSnapshot); err != nil {
		r.Logger.Warn("cache snapshot", "err", err)
	}
	return snap, sim, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns the
// snapshot hash and cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap collage.Snapshot, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}

	snapHash, err := cache.HashJSON(snap)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash snapshot: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	allCached := !opts.Refresh
	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			allCached = false
			break
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, snapHash, true, nil
	}

	rendered, err := Render(ctx, snap, opts)
	if err != nil {
		return nil, "", false, err
	}

	// Cache each format
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, snapHash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
