package collage

import (
	"math"

	"github.com/matzehuels/collage/pkg/geom"
)

// Adjustment returns the displacement that pushes target out of the boxes it
// intersects. boxes[self] is the target's own box and is skipped; pass -1 when
// target is not part of boxes. Each axis of the result is clamped to
// [-limit, limit].
//
// For every intersected box the push acts on one axis only. A target
// narrower than half the other box moves along the axis of the larger center
// offset, so a small box slides off a large one the short way. Otherwise the
// axis is the one along which the intersection is thinner.
func Adjustment(target geom.Rect, boxes []geom.Rect, self int, limit float64) geom.Point {
	var adj geom.Point
	c := target.Center()
	for i, box := range boxes {
		if i == self {
			continue
		}
		inter, ok := geom.Intersection(target, box)
		if !ok {
			continue
		}
		diff := c.Sub(box.Center())
		var horizontal bool
		if target.Width < box.Width/2 {
			horizontal = math.Abs(diff.X) > math.Abs(diff.Y)
		} else {
			horizontal = inter.Width < inter.Height
		}
		if horizontal {
			adj.X += geom.Sign(diff.X) * inter.Width
		} else {
			adj.Y += geom.Sign(diff.Y) * inter.Height
		}
	}
	return adj.Clamp(limit)
}

// collectBounds appends the bounds of every entity to dst.
func collectBounds[T Positionable](dst []geom.Rect, ps []T) []geom.Rect {
	for _, p := range ps {
		dst = append(dst, p.Bounds())
	}
	return dst
}

// applyDeltas moves ps[i] by deltas[i] scaled by damping and returns the
// number of entities that moved. Zero deltas leave the entity untouched.
func applyDeltas[T Positionable](ps []T, deltas []geom.Point, damping float64) int {
	moved := 0
	for i, p := range ps {
		d := deltas[i]
		if d.IsZero() {
			continue
		}
		p.SetPosition(p.Position().Add(d.Scale(damping)))
		moved++
	}
	return moved
}
