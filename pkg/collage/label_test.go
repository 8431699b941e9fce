package collage

import (
	"testing"

	"github.com/matzehuels/collage/pkg/geom"
)

func TestLabelDefaults(t *testing.T) {
	l := NewLabel(newFakeViewport(), "tag")
	if l.Height() != TagHeight || l.Opacity() != 1 || l.Visible() {
		t.Errorf("defaults: height=%v opacity=%v visible=%v", l.Height(), l.Opacity(), l.Visible())
	}
	if l.Bounds().Width != 0 {
		t.Error("width should be unknown before the first show")
	}
}

func TestLabelShowHideIdempotent(t *testing.T) {
	vp := newFakeViewport()
	l := NewLabel(vp, "histology", WithPosition(geom.Pt(1, 2)), WithHeight(0.1))

	l.Show()
	l.Show()
	if vp.liveTexts() != 1 {
		t.Fatalf("live texts = %d after double show, want 1", vp.liveTexts())
	}
	if want := float64(len("histology")) * 0.1 * 0.5; l.Width() != want {
		t.Errorf("width = %v, want %v", l.Width(), want)
	}
	if got := l.Bounds(); got != (geom.Rect{X: 1, Y: 2, Width: l.Width(), Height: 0.1}) {
		t.Errorf("bounds = %v", got)
	}

	l.Hide()
	l.Hide()
	if vp.liveTexts() != 0 || l.Visible() {
		t.Errorf("live texts = %d after double hide, want 0", vp.liveTexts())
	}
	if l.Width() == 0 {
		t.Error("hidden label should keep its measured width")
	}
}

func TestLabelUpdatesHandle(t *testing.T) {
	vp := newFakeViewport()
	l := NewLabel(vp, "x")
	l.Show()
	h := vp.texts[0]

	l.SetPosition(geom.Pt(3, 4))
	l.SetOpacity(1.7)
	if h.spec.Position != geom.Pt(3, 4) {
		t.Errorf("handle position = %v", h.spec.Position)
	}
	if h.spec.Opacity != 1 || l.Opacity() != 1 {
		t.Errorf("opacity should clamp to 1, got %v", h.spec.Opacity)
	}
	l.SetOpacity(-1)
	if l.Opacity() != 0 {
		t.Errorf("opacity should clamp to 0, got %v", l.Opacity())
	}
}

func TestLabelCallbacks(t *testing.T) {
	var clicks, enters, leaves int
	l := NewLabel(newFakeViewport(), "x",
		OnClick(func(*Label) { clicks++ }),
		OnHover(func(_ *Label, in bool) {
			if in {
				enters++
			} else {
				leaves++
			}
		}),
	)
	l.Click()
	l.Hover(true)
	l.Hover(false)
	if clicks != 1 || enters != 1 || leaves != 1 {
		t.Errorf("clicks=%d enters=%d leaves=%d", clicks, enters, leaves)
	}

	// No callbacks registered.
	NewLabel(newFakeViewport(), "y").Click()
}
