// Package pipeline runs the collage end to end without a screen.
//
// This package implements the load → simulate → render pipeline shared by the
// CLI and the server. By centralizing it, a snapshot rendered by `collage
// simulate` is byte-identical to the one the server would produce for the
// same feed and options.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Fetch records from a [feed.Source] and load them into a collage
//     backed by a headless viewport
//  2. Simulate: Run a fixed number of frames so overlaps resolve and items
//     grow to their target size
//  3. Render: Draw the final snapshot in the requested formats (SVG, JSON,
//     PDF, DOT)
//
// Snapshots and artifacts are cached by content hash of the feed and the
// options that affect them.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, src, pipeline.Options{
//	    Frames:  600,
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/cache"
	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/render/sink"
	"github.com/matzehuels/collage/pkg/viewport/headless"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultFrames is the number of simulation frames, ten seconds at the
	// default frame rate.
	DefaultFrames = 600

	// MaxFrames bounds a single run.
	MaxFrames = 100_000

	// DefaultWidth is the default output width in pixels.
	DefaultWidth = sink.DefaultWidth
)

// Format constants for output formats.
const (
	FormatSVG  = sink.FormatSVG
	FormatJSON = sink.FormatJSON
	FormatPDF  = sink.FormatPDF
	FormatDOT  = sink.FormatDOT
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Load options
	Tag     string `json:"tag,omitempty"`   // Search the feed for this tag instead of listing it
	Limit   int    `json:"limit,omitempty"` // Records to load; 0 keeps the source's default
	Refresh bool   `json:"refresh,omitempty"`

	// Simulate options
	Frames int             `json:"frames,omitempty"`
	Select string          `json:"select,omitempty"` // Item id to select before simulating
	Engine collage.Options `json:"engine"`
	Width  int             `json:"viewport_width,omitempty"`
	Height int             `json:"viewport_height,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"` // Output width in pixels
	NoLabels    bool     `json:"no_labels,omitempty"`
	Images      bool     `json:"images,omitempty"`
	FitViewport bool     `json:"fit_viewport,omitempty"` // Frame the camera rather than the whole scene
	Title       string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the scene after the last frame.
	Snapshot collage.Snapshot

	// FeedHash is the content hash of the loaded descriptors.
	FeedHash string

	// SnapshotHash is the content hash of the snapshot.
	SnapshotHash string

	// Report summarizes the load. It is empty when the snapshot came from
	// the cache.
	Report collage.BatchReport

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records      int
	Items        int
	Overlaps     int
	LoadTime     time.Duration
	SimulateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SnapshotHit bool // Whether the snapshot came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(sink.Formats, format) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)",
			format, strings.Join(sink.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSimulate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForSimulate validates and sets defaults for loading and
// simulation.
func (o *Options) ValidateForSimulate() error {
	if o.Frames == 0 {
		o.Frames = DefaultFrames
	}
	if o.Frames < 0 || o.Frames > MaxFrames {
		return errors.New(errors.ErrCodeInvalidInput, "frames must be in [1, %d], got %d", MaxFrames, o.Frames)
	}
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must not be negative, got %d", o.Limit)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Engine.Logger == nil {
		o.Engine.Logger = o.Logger
	}
	o.Engine.SetDefaults()
	if err := o.Engine.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "engine options")
	}
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultWidth
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// ViewportOptions returns the headless viewport configuration. Assets are
// drawn eagerly so loading never waits for a frame.
func (o *Options) ViewportOptions() headless.Options {
	return headless.Options{Width: o.Width, Height: o.Height, Eager: true}
}

// SinkOptions returns the render options shared by every format.
func (o *Options) SinkOptions() []sink.Option {
	opts := []sink.Option{sink.WithWidth(o.Scale)}
	if o.NoLabels {
		opts = append(opts, sink.WithoutLabels())
	}
	if o.Images {
		opts = append(opts, sink.WithImages())
	}
	if o.FitViewport {
		opts = append(opts, sink.WithViewport())
	}
	if o.Title != "" {
		opts = append(opts, sink.WithTitle(o.Title))
	}
	return opts
}

// FeedKey returns a stable name for the records requested from a source.
func (o *Options) FeedKey(source string) string {
	return fmt.Sprintf("%s|tag=%s|limit=%d", source, o.Tag, o.Limit)
}

// SnapshotKeyOpts returns cache key options for the simulated snapshot.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = headless.DefaultWidth
	}
	if h <= 0 {
		h = headless.DefaultHeight
	}
	return cache.SnapshotKeyOpts{
		Frames:      o.Frames,
		Seed:        o.Engine.Seed,
		Damping:     o.Engine.Damping,
		MaxStep:     o.Engine.MaxStep,
		LabelBuffer: o.Engine.LabelBuffer,
		GrowthSteps: int(o.Engine.GrowthSteps),
		TargetW:     o.Engine.TargetSize.W,
		TargetH:     o.Engine.TargetSize.H,
		Width:       w,
		Height:      h,
		Select:      o.Select,
		Touch:       o.Engine.Touch,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Labels:   !o.NoLabels,
		Images:   o.Images,
		Viewport: o.FitViewport,
		Title:    o.Title,
		Scale:    o.Scale,
	}
}
