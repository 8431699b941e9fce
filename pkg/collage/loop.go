package collage

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
)

// DefaultAutoInterval is the auto-pilot period.
const DefaultAutoInterval = 5 * time.Second

// ErrLoopStopped is returned by Call once Run has returned.
var ErrLoopStopped = errors.New(errors.ErrCodeInternal, "frame loop stopped")

// Finder looks up descriptors of photos carrying a tag.
type Finder interface {
	Find(ctx context.Context, tag string) ([]Descriptor, error)
}

// FinderFunc adapts a function to Finder.
type FinderFunc func(ctx context.Context, tag string) ([]Descriptor, error)

func (f FinderFunc) Find(ctx context.Context, tag string) ([]Descriptor, error) { return f(ctx, tag) }

type delivery struct {
	result Result
	batch  *batch
}

type batch struct {
	expected int
	results  []Result
	onDone   func(BatchReport)
}

// Loop owns a Collage on a single goroutine. It ticks the simulation at the
// configured frame rate, registers items as their loads complete and runs
// commands posted from other goroutines between ticks.
type Loop struct {
	c      *Collage
	finder Finder
	logger *log.Logger

	cmds    chan func(*Collage)
	results chan delivery
	done    chan struct{}
	started atomic.Bool

	viewChanged atomic.Bool
	runCtx      context.Context

	mu      sync.Mutex
	onFrame []func(*Collage)
}

// NewLoop wraps c. finder serves tag searches and may be nil, in which case
// tag clicks only move the camera.
func NewLoop(c *Collage, finder Finder) *Loop {
	l := &Loop{
		c:       c,
		finder:  finder,
		logger:  c.logger,
		cmds:    make(chan func(*Collage), 64),
		results: make(chan delivery, 64),
		done:    make(chan struct{}),
		runCtx:  context.Background(),
	}
	c.OnTagClick = func(_ *Item, tag *Label) {
		l.searchTag(l.runCtx, tag, tag.Text(), nil)
	}
	return l
}

// Collage returns the owned collage. Only touch it from inside Do or Call.
func (l *Loop) Collage() *Collage { return l.c }

// OnFrame registers fn to run on the loop goroutine after every tick.
func (l *Loop) OnFrame(fn func(*Collage)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onFrame = append(l.onFrame, fn)
}

// Run drives the collage until ctx is cancelled. It may be called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		panic("collage: Loop.Run called twice")
	}
	defer close(l.done)
	l.runCtx = ctx

	cancel := l.c.vp.Subscribe(func(ViewportEvent) { l.viewChanged.Store(true) })
	defer cancel()

	ticker := time.NewTicker(l.c.opts.FrameInterval())
	defer ticker.Stop()

	l.logger.Debug("frame loop started", "fps", l.c.opts.FrameRate)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("frame loop stopped", "frames", l.c.frames)
			return ctx.Err()
		case <-ticker.C:
			l.c.Frame()
			l.mu.Lock()
			hooks := l.onFrame
			l.mu.Unlock()
			for _, fn := range hooks {
				fn(l.c)
			}
		case d := <-l.results:
			l.deliver(d)
		case fn := <-l.cmds:
			fn(l.c)
		}
		if l.viewChanged.Swap(false) {
			l.c.RefreshSelection()
		}
	}
}

// Do queues fn to run on the loop goroutine. It reports false if the loop
// has stopped. Do must not be called from the loop goroutine.
func (l *Loop) Do(fn func(*Collage)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.cmds <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func(*Collage)) error {
	finished := make(chan struct{})
	queued := l.Do(func(c *Collage) {
		defer close(finished)
		fn(c)
	})
	if !queued {
		return ErrLoopStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Load scatters ds around center and loads them. Items are registered as
// they finish; onDone, if set, runs on the loop goroutine once every
// descriptor has reported, failures included.
func (l *Loop) Load(ctx context.Context, ds []Descriptor, center geom.Point, onDone func(BatchReport)) bool {
	return l.Do(func(*Collage) { l.startBatch(ctx, ds, center, onDone) })
}

// SearchTag loads photos for the tag text, as if the tag had been clicked.
// The tag drawer is closed first. The search and its loads run until the
// loop stops, independent of the caller.
func (l *Loop) SearchTag(text string) bool {
	return l.Do(func(c *Collage) {
		c.HideMobileTags()
		_, tag := c.FindTag(text)
		l.searchTag(l.runCtx, tag, text, nil)
	})
}

// StartAuto runs the auto-pilot until ctx is cancelled. Each cycle waits an
// interval, selects a random item, waits another interval, searches for a
// random tag of that item and starts over once the found photos have loaded.
func (l *Loop) StartAuto(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultAutoInterval
	}
	go func() {
		for {
			if !l.wait(ctx, interval) {
				return
			}
			var picked *Item
			if err := l.Call(ctx, func(c *Collage) {
				picked = c.RandomItem()
				if picked != nil {
					c.Select(picked)
				}
			}); err != nil {
				return
			}
			if picked == nil {
				continue
			}

			if !l.wait(ctx, interval) {
				return
			}
			searched := make(chan struct{})
			finish := func(BatchReport) { close(searched) }
			l.Do(func(c *Collage) {
				tag := c.RandomTag(picked)
				if tag == nil {
					finish(BatchReport{})
					return
				}
				l.logger.Debug("auto-pilot search", "item", picked.ID(), "tag", tag.Text())
				l.searchTag(l.runCtx, tag, tag.Text(), finish)
			})
			select {
			case <-searched:
			case <-ctx.Done():
				return
			case <-l.done:
				return
			}
		}
	}()
}

// wait sleeps for d and reports whether the auto-pilot should go on.
func (l *Loop) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-l.done:
		return false
	}
}

// startBatch runs on the loop goroutine.
func (l *Loop) startBatch(ctx context.Context, ds []Descriptor, center geom.Point, onDone func(BatchReport)) {
	if len(ds) == 0 {
		if onDone != nil {
			onDone(BatchReport{})
		}
		return
	}
	b := &batch{expected: len(ds), onDone: onDone}
	at := l.c.Scatter(center, len(ds))
	go l.c.LoadBatch(ctx, ds, at, func(r Result) {
		select {
		case l.results <- delivery{result: r, batch: b}:
		case <-l.done:
		}
	})
}

func (l *Loop) deliver(d delivery) {
	if d.result.Loaded() {
		if err := l.c.Register(d.result.Item); err != nil {
			l.logger.Warn("register item", "id", d.result.Item.ID(), "err", err)
			l.c.vp.RemoveAsset(d.result.Item.Asset())
			d.result.Err = err
		}
	}
	b := d.batch
	b.results = append(b.results, d.result)
	if len(b.results) < b.expected {
		return
	}
	rep := Report(b.results)
	l.logger.Debug("batch finished", "loaded", rep.Loaded, "rejected", rep.Rejected)
	if b.onDone != nil {
		b.onDone(rep)
	}
}

// searchTag runs on the loop goroutine. tag may be nil when the search comes
// from the tag drawer. onDone, if set, runs on the loop goroutine once the
// found photos have loaded or the search has failed.
func (l *Loop) searchTag(ctx context.Context, tag *Label, text string, onDone func(BatchReport)) {
	l.c.PrepareTagSearch()
	if l.finder == nil {
		if onDone != nil {
			onDone(BatchReport{})
		}
		return
	}
	go func() {
		ds, err := l.finder.Find(ctx, text)
		if err != nil {
			l.logger.Warn("tag search failed", "tag", text, "err", err)
			if onDone != nil {
				l.Do(func(*Collage) { onDone(BatchReport{}) })
			}
			return
		}
		l.Do(func(c *Collage) {
			l.startBatch(ctx, ds, c.TagPlacement(tag), onDone)
		})
	}()
}
