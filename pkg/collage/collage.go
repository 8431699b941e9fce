package collage

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/observability"
)

// Selection is kept only while the visible part of the selected item is at
// least half the viewport or a third of the item, and the item itself covers
// at least a tenth of the viewport.
const (
	keepViewFraction = 0.5
	keepItemFraction = 0.33
	minItemFraction  = 0.10
)

// Collage is the scene controller. It owns the registered items and runs one
// simulation tick per Frame call.
type Collage struct {
	vp     Viewport
	host   Host
	opts   Options
	logger *log.Logger
	rng    *rand.Rand

	items    []*Item
	ids      map[string]struct{}
	selected *Item
	hovered  *Item
	frames   uint64
	raised   int

	tagListUsed bool

	// per-frame scratch, reused across ticks
	boxes    []geom.Rect
	deltas   []geom.Point
	tagBoxes []geom.Rect

	// OnTagClick is called when a tag label of item is clicked.
	OnTagClick func(item *Item, tag *Label)
}

// New creates an empty collage drawing into vp. A nil host ignores all side
// effects. Zero option fields take their defaults.
func New(vp Viewport, host Host, opts Options) *Collage {
	opts.SetDefaults()
	if host == nil {
		host = NopHost{}
	}
	return &Collage{
		vp:     vp,
		host:   host,
		opts:   opts,
		logger: opts.Logger,
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		ids:    make(map[string]struct{}),
	}
}

func (c *Collage) Viewport() Viewport { return c.vp }
func (c *Collage) Options() Options   { return c.opts }
func (c *Collage) Items() []*Item     { return c.items }
func (c *Collage) Selected() *Item    { return c.selected }
func (c *Collage) Hovered() *Item     { return c.hovered }
func (c *Collage) Frames() uint64     { return c.frames }

// Register adds a loaded item to the scene. Items must be ready and may be
// registered only once.
func (c *Collage) Register(it *Item) error {
	if it == nil || !it.ready {
		return errors.New(errors.ErrCodeInvalidInput, "item is not ready")
	}
	if it.c != c {
		return errors.New(errors.ErrCodeInvalidInput, "item %s belongs to another collage", it.id)
	}
	if _, ok := c.ids[it.id]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "item %s already registered", it.id)
	}
	c.ids[it.id] = struct{}{}
	c.items = append(c.items, it)
	c.logger.Debug("item registered", "id", it.id, "tags", len(it.tags), "items", len(c.items))
	return nil
}

// Frame runs one simulation tick.
func (c *Collage) Frame() {
	start := time.Now()

	c.boxes = c.boxes[:0]
	for _, it := range c.items {
		it.Frame()
		c.boxes = append(c.boxes, it.Bounds())
	}

	c.deltas = c.deltas[:0]
	for i, it := range c.items {
		var d geom.Point
		if it.ready && it != c.selected {
			d = Adjustment(c.boxes[i], c.boxes, i, c.opts.MaxStep)
		}
		c.deltas = append(c.deltas, d)
	}
	moved := applyDeltas(c.items, c.deltas, c.opts.Damping)

	if c.selected != nil {
		moved += c.spreadTags(c.selected)
	}

	c.vp.ForceRedraw()
	c.frames++
	observability.Collage().OnFrame(len(c.items), moved, time.Since(start))
}

// spreadTags pushes the tags of sel off each other and off sel itself. sel
// never moves here.
func (c *Collage) spreadTags(sel *Item) int {
	tags := sel.tags
	c.tagBoxes = append(c.tagBoxes[:0], sel.Bounds())
	c.tagBoxes = collectBounds(c.tagBoxes, tags)
	for i := 1; i < len(c.tagBoxes); i++ {
		c.tagBoxes[i] = c.tagBoxes[i].Inflate(c.opts.LabelBuffer)
	}

	c.deltas = c.deltas[:0]
	for i := range tags {
		c.deltas = append(c.deltas, Adjustment(c.tagBoxes[i+1], c.tagBoxes, i+1, c.opts.MaxStep))
	}
	return applyDeltas(tags, c.deltas, c.opts.Damping)
}

// Select makes it the selected item, raising it and fitting the camera to it.
// A nil item clears the selection.
func (c *Collage) Select(it *Item) {
	if c.selected != nil {
		c.selected.Deselect()
	}
	if it != nil {
		c.raise(it)
		c.vp.FitBounds(it.TargetBounds().Inflate(c.opts.selectPadding()), false)
		it.Select()
	}
	c.ShowTags(it)
	c.selected = it

	id := ""
	if it != nil {
		id = it.id
	}
	c.logger.Debug("selection changed", "id", id)
	observability.Collage().OnSelect(id)
}

func (c *Collage) raise(it *Item) {
	c.raised++
	it.z = c.raised
	if it.asset != nil {
		c.vp.Raise(it.asset)
	}
}

// ShowTags hides every tag in the scene, then scatters the tags of it at
// random points inside its bounds and shows them. Touch devices use the tag
// drawer instead and nothing happens.
func (c *Collage) ShowTags(it *Item) {
	if c.opts.Touch {
		return
	}
	for _, other := range c.items {
		for _, t := range other.tags {
			t.Hide()
		}
	}
	if it == nil {
		return
	}
	box := it.Bounds()
	for _, t := range it.tags {
		t.SetPosition(geom.Pt(
			box.X+c.rng.Float64()*box.Width,
			box.Y+c.rng.Float64()*box.Height,
		))
		t.Show()
	}
}

// HitTest returns the first item, in registration order, whose bounds
// strictly contain the scene point under pixel.
func (c *Collage) HitTest(pixel geom.Point) *Item {
	p := c.vp.PointFromPixel(pixel)
	for _, it := range c.items {
		if it.Bounds().Contains(p) {
			return it
		}
	}
	return nil
}

// Hover records the item under pixel as hovered and returns it.
func (c *Collage) Hover(pixel geom.Point) *Item {
	c.hovered = c.HitTest(pixel)
	return c.hovered
}

// Click selects the item under pixel. Slow clicks are drags and are ignored.
func (c *Collage) Click(pixel geom.Point, quick bool) *Item {
	if !quick {
		return nil
	}
	it := c.HitTest(pixel)
	if it != nil {
		c.Select(it)
	}
	return it
}

// RefreshSelection drops the selection once the selected item has mostly
// left the view or become too small in it. It reports whether the selection
// was dropped.
func (c *Collage) RefreshSelection() bool {
	if c.selected == nil {
		return false
	}
	view := c.vp.Bounds(false)
	box := c.selected.Bounds()
	viewArea := view.Area()
	itemArea := box.Area()

	var interArea float64
	if inter, ok := geom.Intersection(view, box); ok {
		interArea = inter.Area()
	}

	if (interArea < viewArea*keepViewFraction && interArea < itemArea*keepItemFraction) ||
		itemArea < viewArea*minItemFraction {
		c.Select(nil)
		return true
	}
	return false
}

// FocusedItem returns the item whose center is nearest the viewport center,
// but only when the view is zoomed in below Options.FocusExtent on both axes.
func (c *Collage) FocusedItem() *Item {
	view := c.vp.Bounds(false)
	if view.Width >= c.opts.FocusExtent || view.Height >= c.opts.FocusExtent {
		return nil
	}
	center := view.Center()
	var best *Item
	bestDist := 0.0
	for _, it := range c.items {
		d := geom.Distance(center, it.Bounds().Center())
		if best == nil || d < bestDist {
			best, bestDist = it, d
		}
	}
	return best
}

// PrepareTagSearch backs the camera off before photos for a tag are loaded:
// it fits the selected item with generous padding, or zooms out when nothing
// is selected, and then clears the selection.
func (c *Collage) PrepareTagSearch() {
	if c.selected != nil {
		c.vp.FitBounds(c.selected.TargetBounds().Inflate(c.opts.TagSearchPadding), false)
	} else {
		c.vp.ZoomBy(DefaultTagSearchZoom)
	}
	c.Select(nil)
}

// TagPlacement is where photos found for tag are scattered around: the tag
// itself on desktop, the viewport center on touch devices.
func (c *Collage) TagPlacement(tag *Label) geom.Point {
	if c.opts.Touch || tag == nil {
		return c.vp.Bounds(true).Center()
	}
	return tag.Position()
}

// ShowMobileTags opens the tag drawer for the selected item. The item is
// deselected while the drawer is open.
func (c *Collage) ShowMobileTags() {
	if c.selected == nil {
		return
	}
	c.tagListUsed = true
	c.selected.Deselect()
	c.host.ShowTagList(c.selected.TagTexts())
}

// HideMobileTags closes the tag drawer and restores the selection.
func (c *Collage) HideMobileTags() {
	c.host.HideTagList()
	if c.selected != nil {
		c.selected.Select()
	}
}

// FindItem returns the registered item with the given id.
func (c *Collage) FindItem(id string) *Item {
	i := slices.IndexFunc(c.items, func(it *Item) bool { return it.id == id })
	if i < 0 {
		return nil
	}
	return c.items[i]
}

// FindTag returns the first tag label with the given text, preferring the
// selected item.
func (c *Collage) FindTag(text string) (*Item, *Label) {
	search := c.items
	if c.selected != nil {
		search = append([]*Item{c.selected}, c.items...)
	}
	for _, it := range search {
		for _, t := range it.tags {
			if t.text == text {
				return it, t
			}
		}
	}
	return nil, nil
}

// RandomItem returns a uniformly chosen registered item, or nil.
func (c *Collage) RandomItem() *Item {
	if len(c.items) == 0 {
		return nil
	}
	return c.items[c.rng.IntN(len(c.items))]
}

// RandomTag returns a uniformly chosen tag of it, or nil.
func (c *Collage) RandomTag(it *Item) *Label {
	if it == nil || len(it.tags) == 0 {
		return nil
	}
	return it.tags[c.rng.IntN(len(it.tags))]
}
