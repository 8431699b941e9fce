package headless

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
)

const (
	// DefaultWidth and DefaultHeight are the container size in pixels.
	DefaultWidth  = 1024
	DefaultHeight = 768

	// DefaultAnimationSteps is the number of redraws a camera move takes.
	DefaultAnimationSteps = 12
)

// HomeBounds is the area the camera shows before anything is selected.
var HomeBounds = geom.Rect{X: -4, Y: -4, Width: 8, Height: 8}

// Opener checks that an asset source can be loaded. A non-nil error makes
// AddAsset fail.
type Opener func(ctx context.Context, source string) error

// Options configures a Viewport.
type Options struct {
	Width, Height  int
	AnimationSteps int
	Eager          bool
	Opener         Opener
	Measurer       Measurer
	Home           geom.Rect
}

// Viewport is an in-memory collage.Viewport. It is safe for concurrent use.
type Viewport struct {
	mu   sync.Mutex
	opts Options

	current geom.Rect
	target  geom.Rect
	from    geom.Rect
	step    int
	steps   int

	assets  []*Asset
	texts   map[int]*Text
	nextTxt int

	subs    map[int]func(collage.ViewportEvent)
	nextSub int

	redraws uint64
}

var _ collage.Viewport = (*Viewport)(nil)

// New returns a viewport showing opts.Home, or HomeBounds when unset.
func New(opts Options) *Viewport {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.AnimationSteps <= 0 {
		opts.AnimationSteps = DefaultAnimationSteps
	}
	if opts.Measurer == nil {
		opts.Measurer = NewFontMeasurer()
	}
	if opts.Home.IsEmpty() {
		opts.Home = HomeBounds
	}
	v := &Viewport{
		opts:  opts,
		texts: make(map[int]*Text),
		subs:  make(map[int]func(collage.ViewportEvent)),
	}
	v.current = v.fit(opts.Home)
	v.target = v.current
	return v
}

// Size returns the container size in pixels.
func (v *Viewport) Size() geom.Size {
	return geom.Size{W: float64(v.opts.Width), H: float64(v.opts.Height)}
}

// fit grows r on one axis so it matches the container aspect ratio, keeping
// its center.
func (v *Viewport) fit(r geom.Rect) geom.Rect {
	aspect := float64(v.opts.Width) / float64(v.opts.Height)
	c := r.Center()
	w, h := r.Width, r.Height
	if w/h > aspect {
		h = w / aspect
	} else {
		w = h * aspect
	}
	return geom.RectAround(c, geom.Size{W: w, H: h})
}

func (v *Viewport) PointFromPixel(p geom.Point) geom.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return geom.Pt(
		v.current.X+p.X/float64(v.opts.Width)*v.current.Width,
		v.current.Y+p.Y/float64(v.opts.Height)*v.current.Height,
	)
}

// PixelFromPoint converts scene coordinates to container pixels.
func (v *Viewport) PixelFromPoint(p geom.Point) geom.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return geom.Pt(
		(p.X-v.current.X)/v.current.Width*float64(v.opts.Width),
		(p.Y-v.current.Y)/v.current.Height*float64(v.opts.Height),
	)
}

func (v *Viewport) Bounds(current bool) geom.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	if current {
		return v.current
	}
	return v.target
}

// Animating reports whether a camera move is in progress.
func (v *Viewport) Animating() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.step < v.steps
}

func (v *Viewport) FitBounds(r geom.Rect, immediately bool) {
	if r.IsEmpty() {
		return
	}
	v.moveTo(v.fit(r), immediately, collage.EventZoom)
}

func (v *Viewport) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	v.mu.Lock()
	t := v.target
	v.mu.Unlock()
	r := geom.RectAround(t.Center(), geom.Size{W: t.Width / factor, H: t.Height / factor})
	v.moveTo(r, false, collage.EventZoom)
}

// PanBy moves the camera by d scene units.
func (v *Viewport) PanBy(d geom.Point, immediately bool) {
	v.mu.Lock()
	t := v.target
	v.mu.Unlock()
	v.moveTo(t.Moved(d), immediately, collage.EventPan)
}

func (v *Viewport) moveTo(r geom.Rect, immediately bool, kind collage.ViewportEventKind) {
	v.mu.Lock()
	v.target = r
	if immediately {
		v.current = r
		v.step, v.steps = 0, 0
	} else {
		v.from = v.current
		v.step, v.steps = 0, v.opts.AnimationSteps
	}
	current := v.current
	subs := v.subscribers()
	v.mu.Unlock()

	if immediately {
		emit(subs, collage.ViewportEvent{Kind: kind, Bounds: current})
	}
}

func (v *Viewport) subscribers() []func(collage.ViewportEvent) {
	out := make([]func(collage.ViewportEvent), 0, len(v.subs))
	for i := 0; i < v.nextSub; i++ {
		if fn, ok := v.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func emit(subs []func(collage.ViewportEvent), ev collage.ViewportEvent) {
	for _, fn := range subs {
		fn(ev)
	}
}

func (v *Viewport) Subscribe(fn func(collage.ViewportEvent)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}

// ForceRedraw advances any camera animation by one step and paints every
// asset, firing pending first-draw notifications.
func (v *Viewport) ForceRedraw() {
	v.mu.Lock()
	v.redraws++
	var ev *collage.ViewportEvent
	if v.step < v.steps {
		v.step++
		v.current = lerp(v.from, v.target, ease(float64(v.step)/float64(v.steps)))
		if v.step == v.steps {
			v.current = v.target
		}
		kind := collage.EventPan
		if v.current.Width != v.from.Width {
			kind = collage.EventZoom
		}
		ev = &collage.ViewportEvent{Kind: kind, Bounds: v.current}
	}
	for _, a := range v.assets {
		a.markDrawn()
	}
	subs := v.subscribers()
	v.mu.Unlock()

	if ev != nil {
		emit(subs, *ev)
	}
}

// Redraws returns the number of ForceRedraw calls.
func (v *Viewport) Redraws() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.redraws
}

func (v *Viewport) AddAsset(ctx context.Context, spec collage.AssetSpec) (collage.Asset, error) {
	if v.opts.Opener != nil {
		if err := v.opts.Opener(ctx, spec.Source); err != nil {
			return nil, fmt.Errorf("open %s: %w", spec.Source, err)
		}
	}
	a := &Asset{
		vp:     v,
		id:     uuid.NewString(),
		source: spec.Source,
		bounds: spec.Bounds,
		drawn:  make(chan struct{}),
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	// New assets go underneath the existing ones.
	v.assets = append([]*Asset{a}, v.assets...)
	if v.opts.Eager {
		a.markDrawn()
	}
	return a, nil
}

func (v *Viewport) RemoveAsset(a collage.Asset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, x := range v.assets {
		if x == a {
			v.assets = append(v.assets[:i], v.assets[i+1:]...)
			return
		}
	}
}

func (v *Viewport) Raise(a collage.Asset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, x := range v.assets {
		if x == a {
			v.assets = append(v.assets[:i], v.assets[i+1:]...)
			v.assets = append(v.assets, x)
			return
		}
	}
}

// Assets returns the assets bottom to top.
func (v *Viewport) Assets() []AssetState {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]AssetState, len(v.assets))
	for i, a := range v.assets {
		out[i] = AssetState{ID: a.id, Source: a.source, Bounds: a.bounds, Drawn: a.isDrawn}
	}
	return out
}

func (v *Viewport) AddText(spec collage.TextSpec) collage.TextHandle {
	width := v.opts.Measurer.Measure(spec.Text, spec.Height, spec.Bold)
	v.mu.Lock()
	defer v.mu.Unlock()
	t := &Text{vp: v, id: v.nextTxt, spec: spec, width: width}
	v.texts[t.id] = t
	v.nextTxt++
	return t
}

// Texts returns the live text nodes in creation order.
func (v *Viewport) Texts() []TextState {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]TextState, 0, len(v.texts))
	for i := 0; i < v.nextTxt; i++ {
		if t, ok := v.texts[i]; ok {
			out = append(out, TextState{
				Text:    t.spec.Text,
				Bounds:  geom.Rect{X: t.spec.Position.X, Y: t.spec.Position.Y, Width: t.width, Height: t.spec.Height},
				Opacity: t.spec.Opacity,
			})
		}
	}
	return out
}

// AssetState describes an asset in the scene.
type AssetState struct {
	ID     string
	Source string
	Bounds geom.Rect
	Drawn  bool
}

// TextState describes a live text node.
type TextState struct {
	Text    string
	Bounds  geom.Rect
	Opacity float64
}

// Asset is an image placed in a Viewport.
type Asset struct {
	vp      *Viewport
	id      string
	source  string
	bounds  geom.Rect
	drawn   chan struct{}
	isDrawn bool
}

func (a *Asset) ID() string             { return a.id }
func (a *Asset) Drawn() <-chan struct{} { return a.drawn }

func (a *Asset) SetSize(s geom.Size) {
	a.vp.mu.Lock()
	defer a.vp.mu.Unlock()
	a.bounds.Width, a.bounds.Height = s.W, s.H
}

func (a *Asset) SetPosition(p geom.Point) {
	a.vp.mu.Lock()
	defer a.vp.mu.Unlock()
	a.bounds.X, a.bounds.Y = p.X, p.Y
}

// markDrawn is called with the viewport lock held.
func (a *Asset) markDrawn() {
	if !a.isDrawn {
		a.isDrawn = true
		close(a.drawn)
	}
}

// Text is a live text node.
type Text struct {
	vp    *Viewport
	id    int
	spec  collage.TextSpec
	width float64
}

func (t *Text) Width() float64 { return t.width }

func (t *Text) SetPosition(p geom.Point) {
	t.vp.mu.Lock()
	defer t.vp.mu.Unlock()
	t.spec.Position = p
}

func (t *Text) SetOpacity(o float64) {
	t.vp.mu.Lock()
	defer t.vp.mu.Unlock()
	t.spec.Opacity = o
}

func (t *Text) Remove() {
	t.vp.mu.Lock()
	defer t.vp.mu.Unlock()
	delete(t.vp.texts, t.id)
}

func lerp(a, b geom.Rect, f float64) geom.Rect {
	mix := func(x, y float64) float64 { return x + (y-x)*f }
	return geom.Rect{
		X:      mix(a.X, b.X),
		Y:      mix(a.Y, b.Y),
		Width:  mix(a.Width, b.Width),
		Height: mix(a.Height, b.Height),
	}
}

// ease is a cubic ease-out.
func ease(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}
