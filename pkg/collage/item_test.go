package collage

import (
	"context"
	"testing"

	"github.com/matzehuels/collage/pkg/geom"
)

func loadOne(t *testing.T, c *Collage, d Descriptor) *Item {
	t.Helper()
	r := c.Load(context.Background(), d, geom.Pt(0, 0))
	if !r.Loaded() {
		t.Fatalf("Load(%s): %v", d.ID, r.Err)
	}
	return r.Item
}

func slideDescriptor(id string) Descriptor {
	return Descriptor{
		ID:     id,
		Title:  "Organ Slice",
		Owner:  "SomeOwner",
		Tags:   "tag0 tag1 tag2",
		Source: "/slide/" + id + "/image.dzi",
	}
}

func TestItemGrowth(t *testing.T) {
	c, _, _ := newTestCollage(Options{})
	it := loadOne(t, c, slideDescriptor("a"))

	if got := it.Size(); got != (geom.Size{W: 40, H: 30}) {
		t.Fatalf("initial size = %v, want 40x30", got)
	}
	target := geom.Size{W: 400, H: 300}
	if it.TargetSize() != target {
		t.Fatalf("target = %v, want %v", it.TargetSize(), target)
	}

	frames := 0
	for !it.Grown() {
		prev := it.Size()
		it.Frame()
		frames++
		got := it.Size()
		if got.W <= prev.W || got.H <= prev.H {
			t.Fatalf("frame %d: size %v did not grow from %v", frames, got, prev)
		}
		if it.Caption() != nil {
			t.Fatalf("frame %d: caption created before full size", frames)
		}
		if frames > 1000 {
			t.Fatal("growth did not terminate")
		}
	}
	if frames != 90 {
		t.Errorf("grew in %d frames, want 90", frames)
	}
	if it.Size() != target {
		t.Errorf("final size = %v, want %v", it.Size(), target)
	}
	asset := it.Asset().(*fakeAsset)
	if asset.size != target {
		t.Errorf("asset size = %v, want %v", asset.size, target)
	}
	if want := it.Bounds().TopLeft(); asset.pos != want {
		t.Errorf("asset position = %v, want %v", asset.pos, want)
	}

	it.Frame()
	caption := it.Caption()
	if caption == nil {
		t.Fatal("caption not created after full growth")
	}
	if caption.Text() != "Organ Slice by SomeOwner" {
		t.Errorf("caption = %q", caption.Text())
	}
	for i := 0; i < 10; i++ {
		it.Frame()
		if it.Caption() != caption {
			t.Fatal("caption recreated")
		}
		if it.Size() != target {
			t.Fatal("size changed after full growth")
		}
	}
}

func TestItemCaption(t *testing.T) {
	c, _, host := newTestCollage(Options{})
	it := placeItem(t, c, "a", geom.Pt(1, 1), geom.Size{W: 2, H: 1})

	it.Select()
	it.Frame()
	caption := it.Caption()
	if caption == nil || !caption.Visible() {
		t.Fatal("caption of a selected item should be shown as soon as it exists")
	}
	if caption.Opacity() != TitleRestOpacity || caption.Height() != TitleHeight {
		t.Errorf("caption opacity/height = %v/%v", caption.Opacity(), caption.Height())
	}
	box := it.Bounds()
	want := geom.Pt(box.X+TitleInset, box.Bottom()-(TitleHeight+TitleInset))
	if caption.Position() != want {
		t.Errorf("caption at %v, want %v", caption.Position(), want)
	}

	caption.Hover(true)
	if caption.Opacity() != TitleHoverOpacity {
		t.Errorf("hover opacity = %v", caption.Opacity())
	}
	caption.Hover(false)
	if caption.Opacity() != TitleRestOpacity {
		t.Errorf("rest opacity = %v", caption.Opacity())
	}
	caption.Click()
	if len(host.opened) != 1 || host.opened[0] != it.PageURL() {
		t.Errorf("opened = %v, want [%s]", host.opened, it.PageURL())
	}

	it.SetPosition(geom.Pt(3, 3))
	box = it.Bounds()
	if caption.Position() != geom.Pt(box.X+TitleInset, box.Bottom()-(TitleHeight+TitleInset)) {
		t.Error("caption did not follow the item")
	}

	it.Deselect()
	if caption.Visible() {
		t.Error("caption should hide on deselect")
	}
}

func TestItemTagClick(t *testing.T) {
	c, _, _ := newTestCollage(Options{})
	it := loadOne(t, c, slideDescriptor("a"))

	var gotItem *Item
	var gotTag string
	c.OnTagClick = func(item *Item, tag *Label) {
		gotItem, gotTag = item, tag.Text()
	}
	it.Tags()[1].Click()
	if gotItem != it || gotTag != "tag1" {
		t.Errorf("tag click reported (%v, %q)", gotItem, gotTag)
	}
	if got := it.TagTexts(); len(got) != 3 || got[2] != "tag2" {
		t.Errorf("TagTexts = %v", got)
	}
}
