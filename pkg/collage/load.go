package collage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/geom"
	"github.com/matzehuels/collage/pkg/observability"
)

// Result is the outcome of one load task: a ready Item, or the reason the
// descriptor was rejected.
type Result struct {
	Descriptor Descriptor
	Item       *Item
	Err        error
	Duration   time.Duration
}

// Loaded reports whether the task produced an item.
func (r Result) Loaded() bool { return r.Err == nil && r.Item != nil }

// BatchReport summarizes a finished batch.
type BatchReport struct {
	Loaded   int
	Rejected int
	Results  []Result
}

// Report tallies results.
func Report(results []Result) BatchReport {
	rep := BatchReport{Results: results}
	for _, r := range results {
		if r.Loaded() {
			rep.Loaded++
		} else {
			rep.Rejected++
		}
	}
	return rep
}

// Load builds an Item from d centered on at and waits for the viewport to
// draw its asset for the first time. The item is returned ready but not
// registered; hand it to Register on the goroutine that owns the Collage.
//
// Descriptors with blank tags or an unusable asset reference are rejected
// with LOAD_REJECTED before anything is added to the viewport. Viewport
// failures and cancellation yield ASSET_LOAD_FAILED.
//
// Load is safe to call from any goroutine.
func (c *Collage) Load(ctx context.Context, d Descriptor, at geom.Point) Result {
	start := time.Now()
	res := Result{Descriptor: d}
	reject := func(err error) Result {
		res.Err = err
		res.Duration = time.Since(start)
		c.opts.Logger.Debug("load rejected", "id", d.ID, "err", err)
		observability.Collage().OnItemRejected(ctx, d.ID, err)
		return res
	}

	if err := errors.ValidateTags(d.Tags); err != nil {
		return reject(err)
	}
	if err := errors.ValidateAssetRef(d.Source); err != nil {
		return reject(err)
	}

	target := d.Size
	if target.W <= 0 || target.H <= 0 {
		target = c.opts.TargetSize
	}
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	it := &Item{
		c:       c,
		id:      id,
		title:   d.Title,
		owner:   d.Owner,
		pageURL: d.PageURL,
		source:  d.Source,
		pos:     at,
		target:  target,
		size:    target.Div(c.opts.InitialScale),
	}
	if it.pageURL == "" {
		it.pageURL = d.Source
	}
	for _, tok := range d.TagTokens() {
		it.tags = append(it.tags, c.newTag(it, tok))
	}

	asset, err := c.vp.AddAsset(ctx, AssetSpec{Source: d.Source, Bounds: it.Bounds()})
	if err != nil {
		return reject(errors.Wrap(errors.ErrCodeAssetLoadFailed, err, "add asset %s", d.Source))
	}
	select {
	case <-asset.Drawn():
	case <-ctx.Done():
		c.vp.RemoveAsset(asset)
		return reject(errors.Wrap(errors.ErrCodeAssetLoadFailed, ctx.Err(), "wait for first draw of %s", d.Source))
	}

	it.asset = asset
	it.ready = true
	res.Item = it
	res.Duration = time.Since(start)
	observability.Collage().OnItemLoaded(ctx, it.id, res.Duration)
	return res
}

func (c *Collage) newTag(it *Item, text string) *Label {
	return NewLabel(c.vp, text, OnClick(func(l *Label) {
		if c.OnTagClick != nil {
			c.OnTagClick(it, l)
		}
	}))
}

// LoadBatch loads every descriptor concurrently, descriptor i centered on
// at[i]. Task i starts after i times Options.Stagger. deliver, if set, is
// called from the task goroutine as each task finishes, failures included.
// LoadBatch returns after every task has reported, with results in descriptor
// order.
func (c *Collage) LoadBatch(ctx context.Context, ds []Descriptor, at []geom.Point, deliver func(Result)) []Result {
	results := make([]Result, len(ds))
	stagger := max(c.opts.Stagger, 0)

	var g errgroup.Group
	for i, d := range ds {
		g.Go(func() error {
			var r Result
			if err := sleep(ctx, time.Duration(i)*stagger); err != nil {
				r = Result{Descriptor: d, Err: errors.Wrap(errors.ErrCodeAssetLoadFailed, err, "batch cancelled")}
			} else {
				r = c.Load(ctx, d, at[i])
			}
			results[i] = r
			if deliver != nil {
				deliver(r)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Scatter returns n placements spread randomly around center. It uses the
// collage's random source and must run on the owning goroutine.
func (c *Collage) Scatter(center geom.Point, n int) []geom.Point {
	out := make([]geom.Point, n)
	for i := range out {
		out[i] = geom.Pt(
			center.X+(c.rng.Float64()-0.5)*scatterWidth,
			center.Y+(c.rng.Float64()-0.5)*scatterHeight,
		)
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
