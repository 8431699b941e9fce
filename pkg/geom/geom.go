package geom

import (
	"fmt"
	"math"
)

// Point is a scene-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point         { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point         { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Scale(f float64) Point     { return Point{X: p.X * f, Y: p.Y * f} }
func (p Point) IsZero() bool              { return p.X == 0 && p.Y == 0 }
func (p Point) String() string            { return fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y) }
func (p Point) Clamp(limit float64) Point { return Point{X: clamp(p.X, limit), Y: clamp(p.Y, limit)} }

func clamp(v, limit float64) float64 {
	return math.Min(limit, math.Max(-limit, v))
}

// Size is a width/height pair.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Div returns the size with both axes divided by f.
func (s Size) Div(f float64) Size { return Size{W: s.W / f, H: s.H / f} }

// Rect is an axis-aligned rectangle. X and Y are the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectAround returns a rectangle of the given size centered on c.
func RectAround(c Point, s Size) Rect {
	return Rect{X: c.X - s.W/2, Y: c.Y - s.H/2, Width: s.W, Height: s.H}
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }
func (r Rect) Area() float64   { return r.Width * r.Height }
func (r Rect) TopLeft() Point  { return Point{X: r.X, Y: r.Y} }
func (r Rect) Center() Point   { return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2} }
func (r Rect) Size() Size      { return Size{W: r.Width, H: r.Height} }
func (r Rect) IsEmpty() bool   { return r.Width <= 0 || r.Height <= 0 }
func (r Rect) String() string  { return fmt.Sprintf("[%.4f %.4f %.4f %.4f]", r.X, r.Y, r.Width, r.Height) }

// Moved returns the rectangle translated by d.
func (r Rect) Moved(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// Inflate grows the rectangle by buf on every side. A negative buf shrinks it.
func (r Rect) Inflate(buf float64) Rect {
	return Rect{X: r.X - buf, Y: r.Y - buf, Width: r.Width + buf*2, Height: r.Height + buf*2}
}

// Contains reports whether p lies strictly inside r. Points on the border are outside.
func (r Rect) Contains(p Point) bool {
	return p.X > r.X && p.Y > r.Y && p.X < r.Right() && p.Y < r.Bottom()
}

// Inside reports whether p lies in the half-open rectangle [X, Right) × [Y, Bottom).
func (r Rect) Inside(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Intersection returns the overlap of a and b. The second result is false when
// the rectangles are disjoint or only touch along an edge or corner.
func Intersection(a, b Rect) (Rect, bool) {
	left := math.Max(a.X, b.X)
	top := math.Max(a.Y, b.Y)
	right := math.Min(a.Right(), b.Right())
	bottom := math.Min(a.Bottom(), b.Bottom())

	if right <= left || bottom <= top {
		return Rect{}, false
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}, true
}

// Distance returns the Euclidean distance between p1 and p2.
func Distance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

// Sign returns 1 for positive v, -1 for negative v and 0 otherwise.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
