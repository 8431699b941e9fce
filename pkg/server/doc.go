// Package server exposes a running collage over HTTP.
//
// The server owns a [collage.Loop] and serves:
//
//	GET  /healthz                  liveness and build version
//	GET  /wsickr/get_list.json     the feed in the fake-Flickr wire format
//	GET  /collage/snapshot.{fmt}   the current scene as svg, json, pdf or dot
//	GET  /collage/overlaps.svg     the overlap graph laid out by Graphviz
//	POST /collage/click?x=&y=      a quick click at container pixels
//	POST /collage/hover?x=&y=      pointer movement
//	POST /collage/select?id=       select an item by id
//	POST /collage/tag?text=        search photos for a tag
//	POST /collage/zoom?factor=     zoom the camera
//	GET  /collage/ws               websocket stream of JSON snapshots
//
// Input handlers post their work to the loop goroutine, so the scene is never
// touched concurrently. The websocket stream samples the scene at
// [Options.StreamFPS] and accepts the same commands as the POST routes.
//
// Requests are logged with charmbracelet/log. [NewFileLogger] writes JSON
// logs to a rotating file.
package server
