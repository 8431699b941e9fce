package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/collage/pkg/errors"
)

// Placeholder metadata for slides found on disk.
const (
	DirOwner = "SomeOwner"
	DirTitle = "Organ Slice"
	DirTags  = "tag0 tag1 tag2"
)

// SlideExtensions are the file types DirSource treats as slides.
var SlideExtensions = []string{".svs", ".tif", ".tiff", ".ndpi", ".mrxs", ".scn", ".dzi", ".jpg", ".jpeg", ".png"}

// DirSource lists the slide images in a directory. Every slide gets the
// same placeholder owner, title and tags; the record id is the file name
// without extension.
type DirSource struct {
	Dir   string
	Limit int
}

// NewDirSource returns a source scanning dir, listing at most
// DefaultListLimit slides.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir, Limit: DefaultListLimit}
}

func (s *DirSource) List(ctx context.Context) ([]Record, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.scan(limit)
}

func (s *DirSource) Search(ctx context.Context, tag string, limit int) ([]Record, error) {
	recs, err := s.scan(0)
	if err != nil {
		return nil, err
	}
	return FilterTag(recs, tag, limit), nil
}

// scan returns up to limit slide records in file name order; limit 0 means
// all.
func (s *DirSource) scan(limit int) ([]Record, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "slide directory %s", s.Dir)
		}
		return nil, err
	}
	var recs []Record
	for _, e := range entries {
		if !e.Type().IsRegular() || !isSlide(e.Name()) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		recs = append(recs, Record{
			ID:        id,
			OwnerName: DirOwner,
			Title:     DirTitle,
			Tags:      DirTags,
		})
		if limit > 0 && len(recs) >= limit {
			break
		}
	}
	return recs, nil
}

func isSlide(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, x := range SlideExtensions {
		if ext == x {
			return true
		}
	}
	return false
}
