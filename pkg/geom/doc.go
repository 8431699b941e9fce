// Package geom provides the 2D primitives used by the collage layout engine.
//
// All coordinates are scene-space floats with the origin at the top-left and
// y growing downwards, matching deep-zoom viewers.
//
// # Types
//
//   - [Point]: immutable 2D coordinate with Add, Sub and Scale
//   - [Rect]: axis-aligned box anchored at its top-left corner
//
// # Functions
//
//   - [Intersection]: overlap of two rectangles, if any
//   - [Distance]: Euclidean distance between two points
//   - [Sign]: -1, 0 or 1
//
// Touching rectangles (shared edge or corner) do not intersect:
//
//	a := geom.Rect{X: 0, Y: 0, Width: 2, Height: 2}
//	b := geom.Rect{X: 2, Y: 0, Width: 2, Height: 2}
//	_, ok := geom.Intersection(a, b) // ok == false
package geom
