package mongofeed

import (
	"context"
	"os"
	"regexp"
	"testing"

	"github.com/matzehuels/collage/pkg/feed"
)

func TestTagPattern(t *testing.T) {
	tests := []struct {
		tags  string
		tag   string
		match bool
	}{
		{"tag0 tag1 tag2", "tag1", true},
		{"tag0 tag1 tag2", "tag", false},
		{"liver", "liver", true},
		{"a.b c", "a.b", true},
		{"axb c", "a.b", false},
	}
	for _, tt := range tests {
		t.Run(tt.tags+"/"+tt.tag, func(t *testing.T) {
			re := regexp.MustCompile(tagPattern(tt.tag))
			if got := re.MatchString(tt.tags); got != tt.match {
				t.Errorf("match = %v, want %v", got, tt.match)
			}
		})
	}
}

func TestSource(t *testing.T) {
	uri := os.Getenv("COLLAGE_TEST_MONGO")
	if uri == "" {
		t.Skip("COLLAGE_TEST_MONGO not set")
	}
	ctx := context.Background()
	src, err := Connect(ctx, uri, "collage_test", "photos")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close(ctx)
	defer src.Drop(ctx)

	recs := []feed.Record{
		{ID: "a", OwnerName: "SomeOwner", Title: "Organ Slice", Tags: "tag0 tag1"},
		{ID: "b", OwnerName: "SomeOwner", Title: "Organ Slice", Tags: "liver"},
	}
	if _, err := src.Upsert(ctx, recs); err != nil {
		t.Fatal(err)
	}
	got, err := src.List(ctx)
	if err != nil || len(got) != 2 || got[0] != recs[0] {
		t.Fatalf("List = %+v, %v", got, err)
	}
	found, err := src.Search(ctx, "liver", 5)
	if err != nil || len(found) != 1 || found[0].ID != "b" {
		t.Errorf("Search = %+v, %v", found, err)
	}
}
