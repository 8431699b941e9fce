package collage

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/collage/pkg/geom"
)

// fakeViewport maps a 1000x1000 pixel container onto view and records every
// command it receives.
type fakeViewport struct {
	mu sync.Mutex

	view     geom.Rect
	pixels   geom.Size
	autoDraw bool
	addErr   error

	assets  []*fakeAsset
	texts   []*fakeText
	pending *geom.Rect
	fits    []geom.Rect
	zooms   []float64
	raised  []string
	redraws int
	subs    map[int]func(ViewportEvent)
	nextSub int
}

func newFakeViewport() *fakeViewport {
	return &fakeViewport{
		view:     geom.Rect{X: -4, Y: -4, Width: 8, Height: 8},
		pixels:   geom.Size{W: 1000, H: 1000},
		autoDraw: true,
		subs:     make(map[int]func(ViewportEvent)),
	}
}

func (v *fakeViewport) PointFromPixel(p geom.Point) geom.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	return geom.Pt(
		v.view.X+p.X/v.pixels.W*v.view.Width,
		v.view.Y+p.Y/v.pixels.H*v.view.Height,
	)
}

// pixelOf is the inverse of PointFromPixel.
func (v *fakeViewport) pixelOf(p geom.Point) geom.Point {
	return geom.Pt(
		(p.X-v.view.X)/v.view.Width*v.pixels.W,
		(p.Y-v.view.Y)/v.view.Height*v.pixels.H,
	)
}

// Bounds returns the camera, or the pending fit target when current is false.
// Animated fits never complete on their own.
func (v *fakeViewport) Bounds(current bool) geom.Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !current && v.pending != nil {
		return *v.pending
	}
	return v.view
}

func (v *fakeViewport) FitBounds(r geom.Rect, immediately bool) {
	v.mu.Lock()
	v.fits = append(v.fits, r)
	if immediately {
		v.view = r
		v.pending = nil
	} else {
		v.pending = &r
	}
	v.mu.Unlock()
}

// setView moves the camera and drops any pending fit.
func (v *fakeViewport) setView(r geom.Rect) {
	v.mu.Lock()
	v.view = r
	v.pending = nil
	v.mu.Unlock()
}

func (v *fakeViewport) ZoomBy(f float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zooms = append(v.zooms, f)
}

func (v *fakeViewport) AddAsset(_ context.Context, spec AssetSpec) (Asset, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.addErr != nil {
		return nil, v.addErr
	}
	a := &fakeAsset{
		id:     fmt.Sprintf("asset-%d", len(v.assets)),
		source: spec.Source,
		pos:    spec.Bounds.TopLeft(),
		size:   spec.Bounds.Size(),
		drawn:  make(chan struct{}),
	}
	if v.autoDraw {
		close(a.drawn)
		a.closed = true
	}
	v.assets = append(v.assets, a)
	return a, nil
}

func (v *fakeViewport) RemoveAsset(a Asset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, x := range v.assets {
		if x == a {
			v.assets = append(v.assets[:i], v.assets[i+1:]...)
			return
		}
	}
}

func (v *fakeViewport) Raise(a Asset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.raised = append(v.raised, a.ID())
}

func (v *fakeViewport) AddText(spec TextSpec) TextHandle {
	t := &fakeText{spec: spec, width: float64(len(spec.Text)) * spec.Height * 0.5}
	v.mu.Lock()
	v.texts = append(v.texts, t)
	v.mu.Unlock()
	return t
}

func (v *fakeViewport) ForceRedraw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.redraws++
}

func (v *fakeViewport) Subscribe(fn func(ViewportEvent)) func() {
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

// drawAll fires the first-draw notification of every pending asset.
func (v *fakeViewport) drawAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, a := range v.assets {
		if !a.closed {
			close(a.drawn)
			a.closed = true
		}
	}
}

func (v *fakeViewport) assetCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.assets)
}

func (v *fakeViewport) liveTexts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, t := range v.texts {
		if !t.removed {
			n++
		}
	}
	return n
}

type fakeAsset struct {
	id     string
	source string
	pos    geom.Point
	size   geom.Size
	drawn  chan struct{}
	closed bool
}

func (a *fakeAsset) ID() string                     { return a.id }
func (a *fakeAsset) SetSize(s geom.Size)            { a.size = s }
func (a *fakeAsset) SetPosition(topLeft geom.Point) { a.pos = topLeft }
func (a *fakeAsset) Drawn() <-chan struct{}         { return a.drawn }

type fakeText struct {
	spec    TextSpec
	width   float64
	removed bool
}

func (t *fakeText) Width() float64           { return t.width }
func (t *fakeText) SetPosition(p geom.Point) { t.spec.Position = p }
func (t *fakeText) SetOpacity(v float64)     { t.spec.Opacity = v }
func (t *fakeText) Remove()                  { t.removed = true }

// fakeHost records side-channel calls.
type fakeHost struct {
	opened   []string
	shown    []Attribution
	hidden   int
	tagLists [][]string
	tagsShut int
}

func (h *fakeHost) OpenURL(u string)                  { h.opened = append(h.opened, u) }
func (h *fakeHost) ShowMobileSelection(a Attribution) { h.shown = append(h.shown, a) }
func (h *fakeHost) HideMobileSelection()              { h.hidden++ }
func (h *fakeHost) ShowTagList(tags []string)         { h.tagLists = append(h.tagLists, tags) }
func (h *fakeHost) HideTagList()                      { h.tagsShut++ }

// placeItem registers a fully grown, ready item without going through Load.
func placeItem(t interface{ Fatalf(string, ...any) }, c *Collage, id string, center geom.Point, size geom.Size, tags ...string) *Item {
	it := &Item{
		c:       c,
		id:      id,
		title:   "Organ Slice",
		owner:   "SomeOwner",
		pageURL: "/slide/" + id + "/image.dzi",
		source:  "/slide/" + id + "/image.dzi",
		pos:     center,
		size:    size,
		target:  size,
		ready:   true,
		asset:   &fakeAsset{id: id, drawn: make(chan struct{})},
	}
	for _, tag := range tags {
		it.tags = append(it.tags, c.newTag(it, tag))
	}
	if err := c.Register(it); err != nil {
		t.Fatalf("Register(%s): %v", id, err)
	}
	return it
}
