package collage

import (
	"github.com/matzehuels/collage/pkg/geom"
)

// Positionable is anything the overlap pass can move.
type Positionable interface {
	Position() geom.Point
	SetPosition(p geom.Point)
	Bounds() geom.Rect
}

var (
	_ Positionable = (*Label)(nil)
	_ Positionable = (*Item)(nil)
)

// Label is a piece of text floating in the scene. It only exists in the
// viewport while shown; a hidden label keeps its position and last measured
// width.
type Label struct {
	vp      Viewport
	text    string
	pos     geom.Point
	width   float64
	height  float64
	opacity float64
	bold    bool
	handle  TextHandle

	onClick func(*Label)
	onHover func(l *Label, in bool)
}

// LabelOption configures a Label.
type LabelOption func(*Label)

// WithHeight sets the font height in scene units.
func WithHeight(h float64) LabelOption {
	return func(l *Label) { l.height = h }
}

// WithOpacity sets the initial opacity.
func WithOpacity(v float64) LabelOption {
	return func(l *Label) { l.opacity = clamp01(v) }
}

// WithBold renders the label in a bold face.
func WithBold() LabelOption {
	return func(l *Label) { l.bold = true }
}

// WithPosition sets the initial top-left corner.
func WithPosition(p geom.Point) LabelOption {
	return func(l *Label) { l.pos = p }
}

// OnClick registers the click callback.
func OnClick(fn func(*Label)) LabelOption {
	return func(l *Label) { l.onClick = fn }
}

// OnHover registers the hover callback. in is true on enter and false on leave.
func OnHover(fn func(l *Label, in bool)) LabelOption {
	return func(l *Label) { l.onHover = fn }
}

// NewLabel creates a hidden label with height 0.05 and full opacity.
func NewLabel(vp Viewport, text string, opts ...LabelOption) *Label {
	l := &Label{vp: vp, text: text, height: TagHeight, opacity: 1}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Label) Text() string         { return l.text }
func (l *Label) Height() float64      { return l.height }
func (l *Label) Width() float64       { return l.width }
func (l *Label) Opacity() float64     { return l.opacity }
func (l *Label) Visible() bool        { return l.handle != nil }
func (l *Label) Position() geom.Point { return l.pos }

// Bounds returns the label rectangle. Width is zero until the label has been
// shown once.
func (l *Label) Bounds() geom.Rect {
	return geom.Rect{X: l.pos.X, Y: l.pos.Y, Width: l.width, Height: l.height}
}

// SetPosition moves the label and its text node, if shown.
func (l *Label) SetPosition(p geom.Point) {
	l.pos = p
	if l.handle != nil {
		l.handle.SetPosition(p)
	}
}

// SetOpacity clamps v to [0, 1] and applies it.
func (l *Label) SetOpacity(v float64) {
	l.opacity = clamp01(v)
	if l.handle != nil {
		l.handle.SetOpacity(l.opacity)
	}
}

// Show creates the text node if the label is hidden and adopts its measured
// width. Showing a visible label does nothing.
func (l *Label) Show() {
	if l.handle != nil {
		return
	}
	l.handle = l.vp.AddText(TextSpec{
		Text:     l.text,
		Position: l.pos,
		Height:   l.height,
		Opacity:  l.opacity,
		Bold:     l.bold,
	})
	l.width = l.handle.Width()
}

// Hide removes the text node. Hiding a hidden label does nothing.
func (l *Label) Hide() {
	if l.handle == nil {
		return
	}
	l.handle.Remove()
	l.handle = nil
}

// Click fires the click callback.
func (l *Label) Click() {
	if l.onClick != nil {
		l.onClick(l)
	}
}

// Hover fires the hover callback.
func (l *Label) Hover(in bool) {
	if l.onHover != nil {
		l.onHover(l, in)
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
