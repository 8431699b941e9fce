// Package httpfeed reads records over HTTP, either from a collage server's
// get_list.json route or from the Flickr REST API.
package httpfeed

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collage/pkg/cache"
	"github.com/matzehuels/collage/pkg/feed"
	"github.com/matzehuels/collage/pkg/httputil"
)

const (
	// ListPath is the route serving the initial record list.
	ListPath = "/wsickr/get_list.json"

	// FlickrEndpoint is the Flickr REST endpoint.
	FlickrEndpoint = "https://api.flickr.com/services/rest/"

	// FlickrListSize is the page size of the initial interestingness list.
	FlickrListSize = 40

	// DefaultAttempts and DefaultBackoff configure retries.
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
)

// Options configures a Source.
type Options struct {
	// BaseURL is the server hosting ListPath. Ignored when APIKey is set.
	BaseURL string
	// APIKey switches the source to the Flickr REST API.
	APIKey string
	// Endpoint overrides FlickrEndpoint.
	Endpoint string

	Client   *http.Client
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Attempts int
	Backoff  time.Duration
}

// Source fetches records over HTTP.
type Source struct {
	opts Options
}

var _ feed.Source = (*Source)(nil)

// New returns a source. Nil cache, keyer and logger get no-op defaults.
func New(opts Options) *Source {
	if opts.Endpoint == "" {
		opts.Endpoint = FlickrEndpoint
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Source{opts: opts}
}

// Flickr reports whether the source talks to the Flickr API.
func (s *Source) Flickr() bool { return s.opts.APIKey != "" }

func (s *Source) List(ctx context.Context) ([]feed.Record, error) {
	if s.Flickr() {
		return s.fetch(ctx, s.flickrURL("interestingness.getList", url.Values{
			"per_page": {strconv.Itoa(FlickrListSize)},
		}), cache.FeedKeyOpts{Limit: FlickrListSize})
	}
	return s.fetch(ctx, s.opts.BaseURL+ListPath, cache.FeedKeyOpts{})
}

// Search queries photos.search on Flickr. The get_list.json route has no
// search, so there the list is filtered by tag instead.
func (s *Source) Search(ctx context.Context, tag string, limit int) ([]feed.Record, error) {
	if limit <= 0 {
		limit = feed.DefaultSearchLimit
	}
	if !s.Flickr() {
		recs, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		return feed.FilterTag(recs, tag, limit), nil
	}
	return s.fetch(ctx, s.flickrURL("photos.search", url.Values{
		"per_page": {strconv.Itoa(limit)},
		"sort":     {"interestingness-desc"},
		"tags":     {tag},
	}), cache.FeedKeyOpts{Tag: tag, Limit: limit})
}

func (s *Source) flickrURL(method string, q url.Values) string {
	q.Set("method", "flickr."+method)
	q.Set("api_key", s.opts.APIKey)
	q.Set("extras", "tags,owner_name")
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	return s.opts.Endpoint + "?" + q.Encode()
}

// cacheSource strips the API key from u so it never ends up in cache keys.
func cacheSource(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	q := parsed.Query()
	q.Del("api_key")
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func (s *Source) fetch(ctx context.Context, u string, keyOpts cache.FeedKeyOpts) ([]feed.Record, error) {
	key := s.opts.Keyer.FeedKey(cacheSource(u), keyOpts)
	var recs []feed.Record
	if hit, err := cache.GetJSON(ctx, s.opts.Cache, "feed", key, &recs); err != nil {
		s.opts.Logger.Warn("feed cache read failed", "err", err)
	} else if hit {
		s.opts.Logger.Debug("feed cache hit", "records", len(recs))
		return recs, nil
	}

	var body []byte
	err := httputil.Retry(ctx, s.opts.Attempts, s.opts.Backoff, func() error {
		var err error
		body, err = httputil.Get(ctx, s.opts.Client, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp, err := feed.Decode(body)
	if err != nil {
		return nil, err
	}
	recs = resp.Photos.Photo
	s.opts.Logger.Debug("feed fetched", "records", len(recs), "flickr", s.Flickr())

	if err := cache.SetJSON(ctx, s.opts.Cache, "feed", key, recs, cache.TTLFeed); err != nil {
		s.opts.Logger.Warn("feed cache write failed", "err", err)
	}
	return recs, nil
}
