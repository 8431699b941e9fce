package feed

import (
	"encoding/json"
	"strconv"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
)

// StatOK is the stat value of a successful response.
const StatOK = "ok"

// Record is one photo.
type Record struct {
	ID        string  `json:"id" yaml:"id" bson:"_id"`
	Owner     string  `json:"owner,omitempty" yaml:"owner,omitempty" bson:"owner,omitempty"`
	OwnerName string  `json:"ownername" yaml:"ownername" bson:"ownername"`
	Title     string  `json:"title" yaml:"title" bson:"title"`
	Tags      string  `json:"tags" yaml:"tags" bson:"tags"`
	Source    string  `json:"source,omitempty" yaml:"source,omitempty" bson:"source,omitempty"`
	PageURL   string  `json:"page_url,omitempty" yaml:"page_url,omitempty" bson:"page_url,omitempty"`
	Server    string  `json:"server,omitempty" yaml:"server,omitempty" bson:"server,omitempty"`
	Secret    string  `json:"secret,omitempty" yaml:"secret,omitempty" bson:"secret,omitempty"`
	Width     float64 `json:"width,omitempty" yaml:"width,omitempty" bson:"width,omitempty"`
	Height    float64 `json:"height,omitempty" yaml:"height,omitempty" bson:"height,omitempty"`
}

// Photos is the paged record list of a response.
type Photos struct {
	Page    int         `json:"page,omitempty" yaml:"page,omitempty"`
	Pages   int         `json:"pages,omitempty" yaml:"pages,omitempty"`
	PerPage int         `json:"perpage,omitempty" yaml:"perpage,omitempty"`
	Total   json.Number `json:"total,omitempty" yaml:"total,omitempty"`
	Photo   []Record    `json:"photo" yaml:"photo"`
}

// Response is a list or search response.
type Response struct {
	Photos Photos `json:"photos" yaml:"photos"`
	Stat   string `json:"stat" yaml:"stat"`
}

// NewResponse wraps records in a single-page response.
func NewResponse(recs []Record) Response {
	if recs == nil {
		recs = []Record{}
	}
	return Response{
		Photos: Photos{Page: 1, Pages: 1, PerPage: len(recs), Total: json.Number(strconv.Itoa(len(recs))), Photo: recs},
		Stat:   StatOK,
	}
}

// SlideSource returns the deep-zoom descriptor path served for a slide.
func SlideSource(id string) string {
	return "/slide/" + id + "/image.dzi"
}

// AssetSource returns the image the record points at: its explicit source,
// the static Flickr URL when server and secret are known, or the slide path.
func (r Record) AssetSource() string {
	switch {
	case r.Source != "":
		return r.Source
	case r.Server != "" && r.Secret != "":
		return "https://live.staticflickr.com/" + r.Server + "/" + r.ID + "_" + r.Secret + "_b.jpg"
	default:
		return SlideSource(r.ID)
	}
}

// Descriptor converts the record for collage.Load. A zero size leaves the
// collage default in place.
func (r Record) Descriptor() collage.Descriptor {
	page := r.PageURL
	if page == "" {
		page = r.AssetSource()
	}
	return collage.Descriptor{
		ID:      r.ID,
		Title:   r.Title,
		Owner:   r.OwnerName,
		Tags:    r.Tags,
		Source:  r.AssetSource(),
		PageURL: page,
		Size:    geom.Size{W: r.Width, H: r.Height},
	}
}

// Descriptors converts every record.
func Descriptors(recs []Record) []collage.Descriptor {
	out := make([]collage.Descriptor, len(recs))
	for i, r := range recs {
		out[i] = r.Descriptor()
	}
	return out
}

// HasTag reports whether tag is one of the record's tag tokens.
func (r Record) HasTag(tag string) bool {
	for _, t := range r.Descriptor().TagTokens() {
		if t == tag {
			return true
		}
	}
	return false
}
