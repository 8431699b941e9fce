// Package headless implements collage.Viewport without a screen.
//
// The viewport keeps a camera (current and target scene rectangles over a
// container of fixed pixel size), a z-ordered registry of image assets and
// the live text nodes. Camera moves requested with FitBounds or ZoomBy are
// eased over a fixed number of redraws, emitting pan and zoom events on the
// way, the way a deep-zoom widget animates.
//
// Assets report their first draw on the first ForceRedraw after they were
// added. With [Options.Eager] they report it immediately, which lets batch
// jobs load a whole feed without running a frame loop.
//
// Text width is measured from real glyph advances using the Go fonts, so
// label boxes in snapshots match what a renderer would produce.
package headless
