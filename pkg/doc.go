// Package pkg provides the core libraries for collage, a deep-zoom photo
// collage that keeps itself tidy.
//
// # Overview
//
// Photos (or whole-slide images) are scattered on an infinite canvas. A
// force simulation pushes overlapping photos apart and grows every photo
// toward a target on-screen size. Selecting a photo moves the camera to it
// and spreads its tags around it; clicking a tag loads more photos carrying
// that tag. The pkg directory is organized into these areas:
//
//  1. [collage] - Domain logic (items, labels, overlap relaxation, the loop)
//  2. [viewport/headless] - The camera and asset registry without a screen
//  3. [feed] - Record sources (directory, file, HTTP, MongoDB)
//  4. [pipeline] - Orchestration (load → simulate → render) with caching
//  5. [render/sink] - Output formats (SVG, PDF, JSON, DOT)
//  6. [server] - The live collage over HTTP and websockets
//
// # Architecture
//
// The typical data flow:
//
//	Feed (dir, file, http, mongo)
//	         ↓
//	    [feed] package (records → descriptors)
//	         ↓
//	    [collage] package (load, register, relax frame by frame)
//	         ↓
//	    [collage.Snapshot]
//	         ↓
//	    [render/sink] (SVG/PDF/JSON/DOT) or [server] (websocket stream)
//
// # Quick Start
//
// Settle a directory of slides and render it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/collage/pkg/feed"
//	    "github.com/matzehuels/collage/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Execute(context.Background(), feed.NewDirSource("./slides"), pipeline.Options{
//	    Frames:  600,
//	    Formats: []string{"svg", "pdf"},
//	})
//	os.WriteFile("collage.svg", res.Artifacts["svg"], 0o644)
//
// # Supporting Packages
//
// [geom] - Points, sizes and rectangles in scene units.
//
// [cache] - File, Redis and null caches with content-hash keys and TTLs.
//
// [config] - TOML plus environment configuration.
//
// [errors] - Coded errors shared by every package.
//
// [httputil] - Retrying HTTP requests with cached responses.
//
// [observability] - Hooks for metrics and tracing of loads, frames, caches and
// HTTP calls.
//
// [buildinfo] - Version information injected at build time.
//
// [collage]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/collage
// [collage.Snapshot]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/collage#Snapshot
// [viewport/headless]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/viewport/headless
// [feed]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/feed
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/pipeline
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/render/sink
// [server]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/server
// [geom]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/geom
// [cache]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/collage/pkg/buildinfo
package pkg
