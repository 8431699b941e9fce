// Package collage lays out a dynamic set of photos and their floating text
// labels in a shared 2D scene and keeps them from overlapping.
//
// # Overview
//
// A [Collage] owns a list of [Item] values (photos) in registration order.
// Each Item carries one [Label] per tag and, once it has grown to full size,
// a title Label. Every simulation tick ([Collage.Frame]) the controller:
//
//  1. grows every item a step toward its target size,
//  2. computes a repulsion vector for every ready, unselected item from the
//     intersections of its box with every other box,
//  3. moves each item by that vector times the damping factor,
//  4. does the same for the tags of the selected item, treating the selected
//     photo as an immovable obstacle,
//  5. asks the viewport to redraw.
//
// The repulsion for one box is the sum, over every box it intersects, of the
// intersection extent along a single axis. When the box is small next to the
// other (narrower than half of it) the axis is the one with the larger center
// offset; otherwise it is the axis along which the intersection is thinner.
// Each axis is clamped to [Options.MaxStep].
//
// # Viewport and host
//
// The package never draws. Rendering, camera animation and input events live
// behind the [Viewport] interface; out-of-scene UI (opening a page, the touch
// attribution panel, the tag drawer) lives behind [Host]. The headless
// implementation in package viewport/headless is used by the CLI, the server
// and the tests.
//
// # Loading
//
// [Collage.Load] turns a [Descriptor] into a ready Item or a rejection.
// It blocks until the viewport reports the first draw of the item's asset,
// so it runs on its own goroutine. [Collage.LoadBatch] fans a slice of
// descriptors out with a fixed stagger and waits for all of them.
//
// # Concurrency
//
// A Collage is not safe for concurrent use. [Loop] owns one on a single
// goroutine, ticks it at a fixed rate and serializes registrations and input
// commands through channels. Load and LoadBatch only read the immutable parts
// of the Collage and may run anywhere.
package collage
