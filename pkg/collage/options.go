package collage

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/geom"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDamping is the fraction of the repulsion vector applied per frame.
	DefaultDamping = 0.2

	// DefaultMaxStep bounds each axis of a repulsion vector, in scene units.
	DefaultMaxStep = 0.1

	// DefaultLabelBuffer inflates tag boxes so neighbouring tags keep a gap.
	DefaultLabelBuffer = 0.01

	// DefaultGrowthSteps is the number of frames an item takes to grow from
	// its initial size to its target size along the longer-lagging axis.
	DefaultGrowthSteps = 100

	// DefaultInitialScale divides the target size to obtain the size an item
	// is created with.
	DefaultInitialScale = 10

	// DefaultSelectPadding and DefaultTouchSelectPadding pad the item bounds
	// when the camera fits a selected item.
	DefaultSelectPadding      = 0.3
	DefaultTouchSelectPadding = 0.05

	// DefaultTagSearchPadding pads the selected item when the camera backs
	// off before a tag search.
	DefaultTagSearchPadding = 1.5

	// DefaultTagSearchZoom is the zoom factor used before a tag search when
	// nothing is selected.
	DefaultTagSearchZoom = 0.5

	// DefaultFocusExtent is the largest visible extent, on both axes, at which
	// the item nearest the viewport center counts as focused.
	DefaultFocusExtent = 2.0

	// DefaultStagger delays the start of the i-th load in a batch by i times
	// this duration.
	DefaultStagger = 200 * time.Millisecond

	// DefaultFrameRate is the number of simulation ticks per second.
	DefaultFrameRate = 60

	// DefaultSeed seeds tag scattering and batch placement.
	DefaultSeed = uint64(42)
)

// DefaultTargetSize is the full size of an item whose descriptor carries no
// size hint.
var DefaultTargetSize = geom.Size{W: 400, H: 300}

// Label defaults.
const (
	TagHeight         = 0.05
	TitleHeight       = 0.025
	TitleRestOpacity  = 0.6
	TitleHoverOpacity = 1.0
	TitleInset        = 0.02
)

// Batch placement spread around the requested center, matching the scatter
// of freshly searched photos: ±1.5 horizontally, ±0.5 vertically.
const (
	scatterWidth  = 3.0
	scatterHeight = 1.0
)

// =============================================================================
// Options
// =============================================================================

// Options configures a Collage. The zero value is usable after SetDefaults.
type Options struct {
	Damping     float64 `json:"damping,omitempty"`
	MaxStep     float64 `json:"max_step,omitempty"`
	LabelBuffer float64 `json:"label_buffer,omitempty"`

	GrowthSteps  float64   `json:"growth_steps,omitempty"`
	InitialScale float64   `json:"initial_scale,omitempty"`
	TargetSize   geom.Size `json:"target_size,omitempty"`

	SelectPadding      float64 `json:"select_padding,omitempty"`
	TouchSelectPadding float64 `json:"touch_select_padding,omitempty"`
	TagSearchPadding   float64 `json:"tag_search_padding,omitempty"`
	FocusExtent        float64 `json:"focus_extent,omitempty"`

	// Touch selects the touch form factor: no hover titles, no floating
	// tags, and selection is reported to the Host instead.
	Touch bool `json:"touch,omitempty"`

	// Stagger is the per-index start delay inside LoadBatch. Negative
	// disables staggering.
	Stagger   time.Duration `json:"stagger,omitempty"`
	FrameRate int           `json:"frame_rate,omitempty"`
	Seed      uint64        `json:"seed,omitempty"`

	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns Options with every field set to its default.
func DefaultOptions() Options {
	var o Options
	o.SetDefaults()
	return o
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Damping == 0 {
		o.Damping = DefaultDamping
	}
	if o.MaxStep == 0 {
		o.MaxStep = DefaultMaxStep
	}
	if o.LabelBuffer == 0 {
		o.LabelBuffer = DefaultLabelBuffer
	}
	if o.GrowthSteps == 0 {
		o.GrowthSteps = DefaultGrowthSteps
	}
	if o.InitialScale == 0 {
		o.InitialScale = DefaultInitialScale
	}
	if o.TargetSize.W == 0 || o.TargetSize.H == 0 {
		o.TargetSize = DefaultTargetSize
	}
	if o.SelectPadding == 0 {
		o.SelectPadding = DefaultSelectPadding
	}
	if o.TouchSelectPadding == 0 {
		o.TouchSelectPadding = DefaultTouchSelectPadding
	}
	if o.TagSearchPadding == 0 {
		o.TagSearchPadding = DefaultTagSearchPadding
	}
	if o.FocusExtent == 0 {
		o.FocusExtent = DefaultFocusExtent
	}
	if o.Stagger == 0 {
		o.Stagger = DefaultStagger
	}
	if o.FrameRate == 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate reports out-of-range tunables. Call after SetDefaults.
func (o *Options) Validate() error {
	if o.Damping <= 0 || o.Damping > 1 {
		return fmt.Errorf("damping must be in (0, 1], got %v", o.Damping)
	}
	if o.MaxStep <= 0 {
		return fmt.Errorf("max step must be positive, got %v", o.MaxStep)
	}
	if o.LabelBuffer < 0 {
		return fmt.Errorf("label buffer must not be negative, got %v", o.LabelBuffer)
	}
	if o.GrowthSteps < 1 {
		return fmt.Errorf("growth steps must be at least 1, got %v", o.GrowthSteps)
	}
	if o.InitialScale < 1 {
		return fmt.Errorf("initial scale must be at least 1, got %v", o.InitialScale)
	}
	if o.TargetSize.W <= 0 || o.TargetSize.H <= 0 {
		return fmt.Errorf("target size must be positive, got %vx%v", o.TargetSize.W, o.TargetSize.H)
	}
	if o.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", o.FrameRate)
	}
	return nil
}

// FrameInterval returns the duration of one tick at FrameRate.
func (o *Options) FrameInterval() time.Duration {
	return time.Second / time.Duration(o.FrameRate)
}

func (o *Options) selectPadding() float64 {
	if o.Touch {
		return o.TouchSelectPadding
	}
	return o.SelectPadding
}
