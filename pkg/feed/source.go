package feed

import (
	"context"

	"github.com/matzehuels/collage/pkg/collage"
)

const (
	// DefaultListLimit caps the initial list, like the wsickr route.
	DefaultListLimit = 10

	// DefaultSearchLimit is the page size of a tag search.
	DefaultSearchLimit = 10
)

// Source provides records.
type Source interface {
	// List returns the records shown when the collage starts.
	List(ctx context.Context) ([]Record, error)
	// Search returns at most limit records carrying tag.
	Search(ctx context.Context, tag string, limit int) ([]Record, error)
}

// NewFinder adapts src to collage.Finder. limit <= 0 uses
// DefaultSearchLimit.
func NewFinder(src Source, limit int) collage.Finder {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return collage.FinderFunc(func(ctx context.Context, tag string) ([]collage.Descriptor, error) {
		recs, err := src.Search(ctx, tag, limit)
		if err != nil {
			return nil, err
		}
		return Descriptors(recs), nil
	})
}

// FilterTag returns up to limit records carrying tag, in order. limit <= 0
// uses DefaultSearchLimit.
func FilterTag(recs []Record, tag string, limit int) []Record {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	var out []Record
	for _, r := range recs {
		if r.HasTag(tag) {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
