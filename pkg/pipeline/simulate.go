package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/observability"
	"github.com/matzehuels/collage/pkg/viewport/headless"
)

// cancelCheck is how many frames run between context checks.
const cancelCheck = 256

// Simulate loads ds into a fresh collage on a headless viewport, then runs
// opts.Frames frames. Records are scattered around the viewport center and
// registered in descriptor order, so equal inputs give equal snapshots.
//
// Rejected records are logged and counted, never fatal.
func Simulate(ctx context.Context, ds []collage.Descriptor, opts Options) (*collage.Collage, SimulateReport, error) {
	if err := opts.ValidateForSimulate(); err != nil {
		return nil, SimulateReport{}, err
	}
	logger := opts.Logger

	vp := headless.New(opts.ViewportOptions())
	engine := opts.Engine
	engine.Stagger = -1 // load the whole batch at once
	c := collage.New(vp, nil, engine)

	// Load
	observability.Pipeline().OnLoadStart(ctx, len(ds))
	loadStart := time.Now()
	at := c.Scatter(vp.Bounds(false).Center(), len(ds))
	results := c.LoadBatch(ctx, ds, at, nil)
	for i, res := range results {
		if !res.Loaded() {
			logger.Warn("record rejected", "id", res.Descriptor.ID, "err", res.Err)
			continue
		}
		if err := c.Register(res.Item); err != nil {
			logger.Warn("record rejected", "id", res.Descriptor.ID, "err", err)
			c.Viewport().RemoveAsset(res.Item.Asset())
			results[i].Err = err
		}
	}
	rep := SimulateReport{BatchReport: collage.Report(results), LoadTime: time.Since(loadStart)}
	observability.Pipeline().OnLoadComplete(ctx, rep.Loaded, rep.Rejected, rep.LoadTime)
	logger.Debug("loaded records", "loaded", rep.Loaded, "rejected", rep.Rejected, "duration", rep.LoadTime)

	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	if opts.Select != "" {
		it := c.FindItem(opts.Select)
		if it == nil {
			return nil, rep, errors.New(errors.ErrCodeNotFound, "select: item %q is not loaded", opts.Select)
		}
		c.Select(it)
	}

	// Simulate
	simStart := time.Now()
	for i := 0; i < opts.Frames; i++ {
		if i%cancelCheck == 0 {
			if err := ctx.Err(); err != nil {
				return nil, rep, err
			}
		}
		c.Frame()
	}
	rep.SimulateTime = time.Since(simStart)
	observability.Pipeline().OnSimulateComplete(ctx, opts.Frames, rep.SimulateTime)

	return c, rep, nil
}
