package httpfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/collage/pkg/cache"
	"github.com/matzehuels/collage/pkg/errors"
)

const listBody = `{"photos":{"photo":[
	{"id":"a","ownername":"SomeOwner","tags":"tag0 tag1 tag2","title":"Organ Slice"},
	{"id":"b","ownername":"SomeOwner","tags":"liver","title":"Organ Slice"}
]},"stat":"ok"}`

func TestListAndSearchWsickr(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != ListPath {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(listBody))
	}))
	defer srv.Close()

	src := New(Options{BaseURL: srv.URL + "/", Client: srv.Client()})
	ctx := context.Background()

	recs, err := src.List(ctx)
	if err != nil || len(recs) != 2 {
		t.Fatalf("List = %d, %v", len(recs), err)
	}
	found, err := src.Search(ctx, "liver", 0)
	if err != nil || len(found) != 1 || found[0].ID != "b" {
		t.Errorf("Search = %+v, %v", found, err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 without a cache", calls.Load())
	}
}

func TestFlickrQuery(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.URL.Query())
		w.Write([]byte(listBody))
	}))
	defer srv.Close()

	src := New(Options{APIKey: "k", Endpoint: srv.URL, Client: srv.Client()})
	if !src.Flickr() {
		t.Fatal("api key should select flickr mode")
	}
	if _, err := src.Search(context.Background(), "liver", 5); err != nil {
		t.Fatal(err)
	}
	q := got.Load().(url.Values)
	want := map[string]string{
		"method":   "flickr.photos.search",
		"api_key":  "k",
		"tags":     "liver",
		"per_page": "5",
		"sort":     "interestingness-desc",
		"extras":   "tags,owner_name",
		"format":   "json",
	}
	for k, v := range want {
		if len(q[k]) != 1 || q[k][0] != v {
			t.Errorf("%s = %v, want %q", k, q[k], v)
		}
	}

	if _, err := src.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	q = got.Load().(url.Values)
	if q["method"][0] != "flickr.interestingness.getList" || q["per_page"][0] != "40" {
		t.Errorf("list query = %v", q)
	}
}

func TestCachedFetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(listBody))
	}))
	defer srv.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := New(Options{BaseURL: srv.URL, Client: srv.Client(), Cache: c})
	for i := 0; i < 3; i++ {
		if recs, err := src.List(context.Background()); err != nil || len(recs) != 2 {
			t.Fatalf("List = %d, %v", len(recs), err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestCacheKeyOmitsAPIKey(t *testing.T) {
	u := "https://api.flickr.com/services/rest/?api_key=secret&method=flickr.photos.search"
	if got := cacheSource(u); strings.Contains(got, "secret") {
		t.Errorf("cache source leaks key: %s", got)
	}
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(listBody))
	}))
	defer srv.Close()

	src := New(Options{BaseURL: srv.URL, Client: srv.Client(), Backoff: time.Millisecond})
	if _, err := src.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestInvalidFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stat":"fail","message":"Invalid API Key"}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL, Client: srv.Client()}).List(context.Background())
	if !errors.Is(err, errors.ErrCodeInvalidFeed) {
		t.Errorf("err = %v, want invalid feed", err)
	}
}
