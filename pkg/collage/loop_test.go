package collage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	cerrors "github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
)

func startLoop(t *testing.T, c *Collage, finder Finder) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop(c, finder)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errc; !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	})
	return l, cancel
}

func waitReport(t *testing.T, ch <-chan BatchReport) BatchReport {
	t.Helper()
	select {
	case rep := <-ch:
		return rep
	case <-time.After(5 * time.Second):
		t.Fatal("batch never finished")
		return BatchReport{}
	}
}

func TestLoopRegistersAfterFirstDraw(t *testing.T) {
	c, vp, _ := newTestCollage(Options{Stagger: -1, FrameRate: 200})
	vp.autoDraw = false
	l, _ := startLoop(t, c, nil)

	reports := make(chan BatchReport, 1)
	ds := []Descriptor{slideDescriptor("a"), {ID: "bad", Source: "/x"}, slideDescriptor("b")}
	if !l.Load(context.Background(), ds, geom.Pt(0, 0), func(r BatchReport) { reports <- r }) {
		t.Fatal("Load not accepted")
	}

	// Wait for both assets to be requested; nothing may be registered yet.
	deadline := time.Now().Add(2 * time.Second)
	for vp.assetCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("assets never requested")
		}
		time.Sleep(time.Millisecond)
	}
	var n int
	if err := l.Call(context.Background(), func(c *Collage) { n = len(c.Items()) }); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("%d items registered before first draw", n)
	}

	vp.drawAll()
	rep := waitReport(t, reports)
	if rep.Loaded != 2 || rep.Rejected != 1 {
		t.Errorf("loaded=%d rejected=%d, want 2/1", rep.Loaded, rep.Rejected)
	}

	var ids []string
	if err := l.Call(context.Background(), func(c *Collage) {
		for _, it := range c.Items() {
			ids = append(ids, it.ID())
		}
	}); err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Errorf("registered %v, want a and b", ids)
	}
}

func TestLoopEmptyBatch(t *testing.T) {
	c, _, _ := newTestCollage(Options{})
	l, _ := startLoop(t, c, nil)

	reports := make(chan BatchReport, 1)
	l.Load(context.Background(), nil, geom.Point{}, func(r BatchReport) { reports <- r })
	if rep := waitReport(t, reports); rep.Loaded != 0 || rep.Rejected != 0 {
		t.Errorf("empty batch report = %+v", rep)
	}
}

func TestLoopTagClickSearches(t *testing.T) {
	c, _, _ := newTestCollage(Options{Stagger: -1, FrameRate: 200})

	searched := make(chan string, 1)
	finder := FinderFunc(func(_ context.Context, tag string) ([]Descriptor, error) {
		searched <- tag
		return []Descriptor{slideDescriptor("found")}, nil
	})
	l, _ := startLoop(t, c, finder)

	reports := make(chan BatchReport, 1)
	l.Load(context.Background(), []Descriptor{slideDescriptor("a")}, geom.Pt(0, 0), func(r BatchReport) { reports <- r })
	waitReport(t, reports)

	if err := l.Call(context.Background(), func(c *Collage) {
		it := c.FindItem("a")
		c.Select(it)
		it.Tags()[0].Click()
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case tag := <-searched:
		if tag != "tag0" {
			t.Errorf("searched %q, want tag0", tag)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("tag click did not search")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		var found, selected bool
		if err := l.Call(context.Background(), func(c *Collage) {
			found = c.FindItem("found") != nil
			selected = c.Selected() != nil
		}); err != nil {
			t.Fatal(err)
		}
		if selected {
			t.Fatal("tag search should clear the selection")
		}
		if found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("search results never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitSearch(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case tag := <-ch:
		return tag
	case <-time.After(5 * time.Second):
		t.Fatal("no tag search")
		return ""
	}
}

func TestLoopAutoAlternatesSelectAndSearch(t *testing.T) {
	c, vp, _ := newTestCollage(Options{Stagger: -1, FrameRate: 200})

	var found atomic.Int32
	searched := make(chan string, 4)
	release := make(chan struct{})
	finder := FinderFunc(func(ctx context.Context, tag string) ([]Descriptor, error) {
		searched <- tag
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []Descriptor{slideDescriptor(fmt.Sprintf("found-%d", found.Add(1)))}, nil
	})
	l, _ := startLoop(t, c, finder)

	reports := make(chan BatchReport, 1)
	l.Load(context.Background(), []Descriptor{slideDescriptor("a")}, geom.Pt(0, 0), func(r BatchReport) { reports <- r })
	waitReport(t, reports)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	const interval = 20 * time.Millisecond
	l.StartAuto(ctx, interval)

	if tag := waitSearch(t, searched); tag != "tag0" && tag != "tag1" && tag != "tag2" {
		t.Errorf("searched %q, want a tag of a", tag)
	}

	// Selecting a fits it; the search then backs the camera off from it.
	var fits int
	if err := l.Call(context.Background(), func(c *Collage) {
		it := c.FindItem("a")
		vp.mu.Lock()
		defer vp.mu.Unlock()
		fits = len(vp.fits)
		if fits < 2 {
			t.Errorf("fits = %v, want a select and a search fit", vp.fits)
			return
		}
		if got, want := vp.fits[fits-2], it.TargetBounds().Inflate(c.opts.selectPadding()); got != want {
			t.Errorf("select fit = %v, want %v", got, want)
		}
		if got, want := vp.fits[fits-1], it.TargetBounds().Inflate(c.opts.TagSearchPadding); got != want {
			t.Errorf("search fit = %v, want %v", got, want)
		}
	}); err != nil {
		t.Fatal(err)
	}

	// Nothing is selected until the found photos have loaded.
	time.Sleep(5 * interval)
	if err := l.Call(context.Background(), func(c *Collage) {
		if c.Selected() != nil {
			t.Errorf("auto-pilot selected %s during a pending search", c.Selected().ID())
		}
		vp.mu.Lock()
		defer vp.mu.Unlock()
		if len(vp.fits) != fits {
			t.Errorf("camera moved during a pending search: %v", vp.fits[fits:])
		}
	}); err != nil {
		t.Fatal(err)
	}

	close(release)
	waitSearch(t, searched)
	if err := l.Call(context.Background(), func(c *Collage) {
		if c.FindItem("found-1") == nil {
			t.Error("next cycle started before the search results loaded")
		}
	}); err != nil {
		t.Fatal(err)
	}
}

func TestLoopSearchTagOutlivesCaller(t *testing.T) {
	c, _, _ := newTestCollage(Options{Stagger: -1, FrameRate: 200})
	finder := FinderFunc(func(ctx context.Context, tag string) ([]Descriptor, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []Descriptor{slideDescriptor("liver-1"), slideDescriptor("liver-2")}, nil
	})
	l, _ := startLoop(t, c, finder)

	if !l.SearchTag("liver") {
		t.Fatal("SearchTag not accepted")
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		var n int
		if err := l.Call(context.Background(), func(c *Collage) { n = len(c.Items()) }); err != nil {
			t.Fatal(err)
		}
		if n == 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("registered %d of 2 found photos", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoopRefreshesSelectionOnViewportEvents(t *testing.T) {
	c, vp, _ := newTestCollage(Options{FrameRate: 200})
	l, _ := startLoop(t, c, nil)

	if err := l.Call(context.Background(), func(c *Collage) {
		c.Select(placeItem(t, c, "a", geom.Pt(0, 0), geom.Size{W: 0.1, H: 0.1}))
	}); err != nil {
		t.Fatal(err)
	}

	// The item covers far less than a tenth of the 8x8 view.
	vp.mu.Lock()
	subs := make([]func(ViewportEvent), 0, len(vp.subs))
	for _, fn := range vp.subs {
		subs = append(subs, fn)
	}
	vp.mu.Unlock()
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}
	subs[0](ViewportEvent{Kind: EventZoom, Bounds: vp.Bounds(true)})

	deadline := time.Now().Add(2 * time.Second)
	for {
		var selected bool
		if err := l.Call(context.Background(), func(c *Collage) { selected = c.Selected() != nil }); err != nil {
			t.Fatal(err)
		}
		if !selected {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("selection survived a zoom that made it tiny")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoopCallAfterStop(t *testing.T) {
	c, _, _ := newTestCollage(Options{})
	l := NewLoop(c, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if err := l.Call(context.Background(), func(*Collage) {}); !cerrors.Is(err, cerrors.ErrCodeInternal) {
		t.Errorf("Call after stop = %v, want ErrLoopStopped", err)
	}
	if l.Do(func(*Collage) {}) {
		t.Error("Do after stop should report false")
	}
}
