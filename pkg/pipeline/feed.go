package pipeline

import (
	"context"

	"github.com/matzehuels/collage/pkg/errors"
	"github.com/matzehuels/collage/pkg/feed"
)

// Fetch returns the records a run loads: a tag search when opts.Tag is set,
// otherwise the source's list truncated to opts.Limit.
func Fetch(ctx context.Context, src feed.Source, opts Options) ([]feed.Record, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "feed source is required")
	}
	if opts.Tag != "" {
		return src.Search(ctx, opts.Tag, opts.Limit)
	}
	recs, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	return recs, nil
}
