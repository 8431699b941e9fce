package collage

import (
	"math"
	"strings"

	"github.com/matzehuels/collage/pkg/geom"
)

// Descriptor is everything needed to create an Item.
type Descriptor struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Owner   string    `json:"owner"`
	Tags    string    `json:"tags"`
	Source  string    `json:"source"`
	PageURL string    `json:"page_url,omitempty"`
	Size    geom.Size `json:"size,omitempty"`
}

// TagTokens splits the whitespace-delimited tag string.
func (d Descriptor) TagTokens() []string {
	return strings.Fields(d.Tags)
}

// Item is a photo in the scene. It is created small and grows toward its
// target size one frame at a time.
type Item struct {
	c *Collage

	id      string
	title   string
	owner   string
	pageURL string
	source  string

	pos    geom.Point
	size   geom.Size
	target geom.Size

	asset    Asset
	tags     []*Label
	caption  *Label
	selected bool
	ready    bool
	z        int
}

func (it *Item) ID() string              { return it.id }
func (it *Item) Title() string           { return it.title }
func (it *Item) Owner() string           { return it.owner }
func (it *Item) PageURL() string         { return it.pageURL }
func (it *Item) Source() string          { return it.source }
func (it *Item) Asset() Asset            { return it.asset }
func (it *Item) Tags() []*Label          { return it.tags }
func (it *Item) Caption() *Label         { return it.caption }
func (it *Item) Selected() bool          { return it.selected }
func (it *Item) Ready() bool             { return it.ready }
func (it *Item) Size() geom.Size         { return it.size }
func (it *Item) TargetSize() geom.Size   { return it.target }
func (it *Item) Position() geom.Point    { return it.pos }
func (it *Item) Bounds() geom.Rect       { return geom.RectAround(it.pos, it.size) }
func (it *Item) TargetBounds() geom.Rect { return geom.RectAround(it.pos, it.target) }

// Grown reports whether the item has reached its target size.
func (it *Item) Grown() bool {
	return it.size.W >= it.target.W && it.size.H >= it.target.H
}

// TagTexts returns the tag strings in order.
func (it *Item) TagTexts() []string {
	out := make([]string, len(it.tags))
	for i, t := range it.tags {
		out[i] = t.Text()
	}
	return out
}

// Attribution returns the touch panel text for the item.
func (it *Item) Attribution() Attribution {
	return Attribution{Title: it.title, Owner: it.owner, PageURL: it.pageURL, HintTags: !it.c.tagListUsed}
}

// SetPosition moves the item center and drags the asset and caption along.
func (it *Item) SetPosition(p geom.Point) {
	it.pos = p
	it.update()
}

// Frame advances growth by one step. Once the item is fully grown it creates
// its caption, exactly once, unless the form factor is touch.
func (it *Item) Frame() {
	if !it.Grown() {
		steps := it.c.opts.GrowthSteps
		it.size.W = math.Min(it.target.W, it.size.W+it.target.W/steps)
		it.size.H = math.Min(it.target.H, it.size.H+it.target.H/steps)
		if it.asset != nil {
			it.asset.SetSize(it.size)
		}
		it.update()
		return
	}
	if it.caption != nil || it.c.opts.Touch {
		return
	}
	it.caption = it.newCaption()
	it.update()
	if it.selected {
		it.caption.Show()
	}
}

func (it *Item) newCaption() *Label {
	return NewLabel(it.c.vp, caption(it.title, it.owner),
		WithHeight(TitleHeight),
		WithOpacity(TitleRestOpacity),
		OnHover(func(l *Label, in bool) {
			if in {
				l.SetOpacity(TitleHoverOpacity)
			} else {
				l.SetOpacity(TitleRestOpacity)
			}
		}),
		OnClick(func(*Label) {
			if it.pageURL != "" {
				it.c.host.OpenURL(it.pageURL)
			}
		}),
	)
}

// Select marks the item selected and shows its caption, or on touch devices
// hands the attribution to the host.
func (it *Item) Select() {
	it.selected = true
	switch {
	case it.caption != nil:
		it.caption.Show()
	case it.c.opts.Touch:
		it.c.host.ShowMobileSelection(it.Attribution())
	}
}

// Deselect reverses Select.
func (it *Item) Deselect() {
	it.selected = false
	switch {
	case it.caption != nil:
		it.caption.Hide()
	case it.c.opts.Touch:
		it.c.host.HideMobileSelection()
	}
}

func (it *Item) update() {
	box := it.Bounds()
	if it.asset != nil {
		it.asset.SetPosition(box.TopLeft())
	}
	if it.caption != nil {
		it.caption.SetPosition(geom.Pt(
			box.X+TitleInset,
			box.Bottom()-(it.caption.Height()+TitleInset),
		))
	}
}
