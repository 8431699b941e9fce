// Package feed defines the input records of a collage and where they come
// from.
//
// A [Record] is one photo in the Flickr-shaped wire format: an id, the owner
// name, a title and a space-delimited tag string, optionally with an explicit
// asset source. A [Response] wraps records the way the Flickr REST API and
// the wsickr route do:
//
//	{"photos": {"photo": [{"id": "a", "ownername": "...", "tags": "t0 t1", "title": "..."}]}, "stat": "ok"}
//
// [Decode] validates a response against an embedded JSON schema before
// decoding it, so malformed feeds are rejected as a whole with a readable
// message.
//
// # Sources
//
// A [Source] lists the initial records and searches records by tag:
//
//   - [FileSource]: a JSON or YAML file holding a response or a bare list
//   - [DirSource]: a slide directory, one record per image like the wsickr route
//   - httpfeed.Source: the get_list.json route or the Flickr REST API
//   - mongofeed.Source: a MongoDB collection
//
// [NewFinder] adapts a Source to the tag search of a collage.Loop.
package feed
