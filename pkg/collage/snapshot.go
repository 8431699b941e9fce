package collage

import (
	"sort"

	"github.com/matzehuels/collage/pkg/geom"
)

// Snapshot is an immutable copy of the scene, safe to hand to other
// goroutines for rendering or streaming.
type Snapshot struct {
	Frame    uint64      `json:"frame"`
	Viewport geom.Rect   `json:"viewport"`
	Items    []ItemState `json:"items"`
	Selected string      `json:"selected,omitempty"`
	Hovered  string      `json:"hovered,omitempty"`
	Touch    bool        `json:"touch,omitempty"`
}

// ItemState is one item in a Snapshot.
type ItemState struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Owner        string       `json:"owner"`
	Source       string       `json:"source"`
	PageURL      string       `json:"page_url,omitempty"`
	Bounds       geom.Rect    `json:"bounds"`
	TargetBounds geom.Rect    `json:"target_bounds"`
	Selected     bool         `json:"selected,omitempty"`
	Z            int          `json:"z"`
	Tags         []LabelState `json:"tags,omitempty"`
	Caption      *LabelState  `json:"caption,omitempty"`
}

// LabelState is one label in a Snapshot.
type LabelState struct {
	Text    string    `json:"text"`
	Bounds  geom.Rect `json:"bounds"`
	Opacity float64   `json:"opacity"`
	Visible bool      `json:"visible"`
}

func labelState(l *Label) LabelState {
	return LabelState{Text: l.text, Bounds: l.Bounds(), Opacity: l.opacity, Visible: l.Visible()}
}

// Snapshot copies the current scene. Items are ordered bottom to top: by
// the order in which they were last raised, then by registration.
func (c *Collage) Snapshot() Snapshot {
	s := Snapshot{
		Frame:    c.frames,
		Viewport: c.vp.Bounds(true),
		Items:    make([]ItemState, 0, len(c.items)),
		Touch:    c.opts.Touch,
	}
	if c.selected != nil {
		s.Selected = c.selected.id
	}
	if c.hovered != nil {
		s.Hovered = c.hovered.id
	}
	for _, it := range c.items {
		st := ItemState{
			ID:           it.id,
			Title:        it.title,
			Owner:        it.owner,
			Source:       it.source,
			PageURL:      it.pageURL,
			Bounds:       it.Bounds(),
			TargetBounds: it.TargetBounds(),
			Selected:     it.selected,
			Z:            it.z,
		}
		for _, t := range it.tags {
			st.Tags = append(st.Tags, labelState(t))
		}
		if it.caption != nil {
			ls := labelState(it.caption)
			st.Caption = &ls
		}
		s.Items = append(s.Items, st)
	}
	sort.SliceStable(s.Items, func(i, j int) bool { return s.Items[i].Z < s.Items[j].Z })
	return s
}

// SceneBounds returns the smallest rectangle holding every item and visible
// label, or the viewport when the scene is empty.
func (s Snapshot) SceneBounds() geom.Rect {
	if len(s.Items) == 0 {
		return s.Viewport
	}
	minX, minY := s.Items[0].Bounds.X, s.Items[0].Bounds.Y
	maxX, maxY := s.Items[0].Bounds.Right(), s.Items[0].Bounds.Bottom()
	grow := func(r geom.Rect) {
		minX, minY = min(minX, r.X), min(minY, r.Y)
		maxX, maxY = max(maxX, r.Right()), max(maxY, r.Bottom())
	}
	for _, it := range s.Items {
		grow(it.Bounds)
		for _, t := range it.Tags {
			if t.Visible {
				grow(t.Bounds)
			}
		}
		if it.Caption != nil && it.Caption.Visible {
			grow(it.Caption.Bounds)
		}
	}
	return geom.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Item returns the state of the item with the given id.
func (s Snapshot) Item(id string) (ItemState, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemState{}, false
}
