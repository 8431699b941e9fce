package collage

import (
	"context"

	"github.com/matzehuels/collage/pkg/geom"
)

// Viewport is the rendering surface the collage is drawn into. It owns the
// camera, the image assets and the text nodes; the collage only positions
// them. Implementations must accept AddAsset and RemoveAsset from any
// goroutine. Every other method is called from the goroutine that owns the
// Collage.
type Viewport interface {
	// PointFromPixel converts container pixel coordinates to scene coordinates.
	PointFromPixel(pixel geom.Point) geom.Point

	// Bounds returns the visible scene rectangle. With current set it is the
	// rectangle on screen right now; otherwise it is the target of any
	// running camera animation.
	Bounds(current bool) geom.Rect

	// FitBounds moves the camera so that r is visible.
	FitBounds(r geom.Rect, immediately bool)

	// ZoomBy scales the zoom level. Factors below 1 zoom out.
	ZoomBy(factor float64)

	// AddAsset starts loading an image asset at the given scene rectangle.
	AddAsset(ctx context.Context, spec AssetSpec) (Asset, error)
	RemoveAsset(a Asset)

	// Raise moves a to the top of the drawing order.
	Raise(a Asset)

	// AddText creates a text node. Its width is measured by the viewport.
	AddText(spec TextSpec) TextHandle

	// ForceRedraw requests a repaint of the whole scene.
	ForceRedraw()

	// Subscribe registers fn for camera events. The returned func removes it.
	Subscribe(fn func(ViewportEvent)) (cancel func())
}

// AssetSpec describes an image asset to add to the scene.
type AssetSpec struct {
	Source string
	Bounds geom.Rect
}

// Asset is a handle on an image that lives in the viewport.
type Asset interface {
	ID() string
	SetSize(s geom.Size)
	SetPosition(topLeft geom.Point)

	// Drawn is closed once the asset has been painted for the first time.
	Drawn() <-chan struct{}
}

// TextSpec describes a text node. Position is the top-left corner and Height
// the font size, both in scene units.
type TextSpec struct {
	Text     string
	Position geom.Point
	Height   float64
	Opacity  float64
	Bold     bool
}

// TextHandle is a live text node.
type TextHandle interface {
	// Width returns the rendered width in scene units.
	Width() float64
	SetPosition(p geom.Point)
	SetOpacity(v float64)
	Remove()
}

// ViewportEventKind distinguishes camera events.
type ViewportEventKind int

const (
	EventPan ViewportEventKind = iota
	EventZoom
)

func (k ViewportEventKind) String() string {
	switch k {
	case EventPan:
		return "pan"
	case EventZoom:
		return "zoom"
	default:
		return "unknown"
	}
}

// ViewportEvent reports a camera change.
type ViewportEvent struct {
	Kind   ViewportEventKind
	Bounds geom.Rect
}
