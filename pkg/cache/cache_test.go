package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	key := NewDefaultKeyer().SnapshotKey("feed-hash", SnapshotKeyOpts{Frames: 300, Seed: 42})
	snap := map[string]any{"frame": 300, "items": []string{"kidney-01", "liver-01"}}
	if err := SetJSON(ctx, c, "snapshot", key, snap, TTLSnapshot); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var got map[string]any
	hit, err := GetJSON(ctx, c, "snapshot", key, &got)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if hit || got != nil {
		t.Errorf("disabled cache returned hit=%v %v", hit, got)
	}
	if data, hit, err := c.Get(ctx, key); data != nil || hit || err != nil {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("wsickr", "get_list.json"); got != "http:wsickr:get_list.json" {
		t.Errorf("HTTPKey unexpected: %s", got)
	}

	fk1 := k.FeedKey("http://localhost", FeedKeyOpts{Tag: "tag0"})
	fk2 := k.FeedKey("http://localhost", FeedKeyOpts{Tag: "tag1"})
	if fk1 == fk2 || !strings.HasPrefix(fk1, "feed:") {
		t.Errorf("FeedKey should hash options: %s %s", fk1, fk2)
	}

	sk1 := k.SnapshotKey("abc", SnapshotKeyOpts{Frames: 300, Seed: 1})
	sk2 := k.SnapshotKey("abc", SnapshotKeyOpts{Frames: 300, Seed: 2})
	if sk1 == sk2 {
		t.Error("Different seeds should produce different snapshot keys")
	}
	if sk1 != k.SnapshotKey("abc", SnapshotKeyOpts{Frames: 300, Seed: 1}) {
		t.Error("SnapshotKey should be deterministic")
	}

	ak1 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "pdf"})
	if ak1 == ak2 {
		t.Error("Different formats should produce different artifact keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "deploy:a:")

	if got := scoped.HTTPKey("flickr", "q"); got != "deploy:a:http:flickr:q" {
		t.Errorf("ScopedKeyer HTTPKey unexpected: %s", got)
	}
	for _, key := range []string{
		scoped.FeedKey("src", FeedKeyOpts{}),
		scoped.SnapshotKey("h", SnapshotKeyOpts{}),
		scoped.ArtifactKey("h", ArtifactKeyOpts{}),
	} {
		if !strings.HasPrefix(key, "deploy:a:") {
			t.Errorf("key should be prefixed: %s", key)
		}
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.HTTPKey("test", "key"); key != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get missing: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q %v %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	type rec struct{ ID string }
	if err := SetJSON(ctx, c, "feed", "k", rec{ID: "1"}, TTLFeed); err != nil {
		t.Fatal(err)
	}
	var got rec
	hit, err := GetJSON(ctx, c, "feed", "k", &got)
	if err != nil || !hit || got.ID != "1" {
		t.Fatalf("GetJSON = %+v %v %v", got, hit, err)
	}

	if err := c.Set(ctx, "bad", []byte("{"), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := GetJSON(ctx, c, "feed", "bad", &got); !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}
	if _, hit, _ := c.Get(ctx, "bad"); hit {
		t.Error("corrupt entry should be deleted")
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("COLLAGE_TEST_REDIS")
	if url == "" {
		t.Skip("COLLAGE_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "collage-test:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q %v %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url", ""); err == nil {
		t.Error("expected parse error")
	}
}
