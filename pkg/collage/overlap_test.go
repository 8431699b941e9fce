package collage

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/collage/pkg/geom"
)

func TestAdjustment(t *testing.T) {
	tests := []struct {
		name   string
		target geom.Rect
		others []geom.Rect
		want   geom.Point
	}{
		{
			name:   "disjoint",
			target: geom.Rect{X: 0, Y: 0, Width: 1, Height: 1},
			others: []geom.Rect{{X: 2, Y: 2, Width: 1, Height: 1}},
			want:   geom.Point{},
		},
		{
			name:   "touching edge",
			target: geom.Rect{X: 0, Y: 0, Width: 1, Height: 1},
			others: []geom.Rect{{X: 1, Y: 0, Width: 1, Height: 1}},
			want:   geom.Point{},
		},
		{
			name:   "shallow horizontal overlap pushes left",
			target: geom.Rect{X: 0, Y: 0, Width: 1, Height: 1},
			others: []geom.Rect{{X: 0.95, Y: 0, Width: 1, Height: 1}},
			want:   geom.Pt(-0.05, 0),
		},
		{
			name:   "shallow vertical overlap pushes down",
			target: geom.Rect{X: 0, Y: 0.96, Width: 1, Height: 1},
			others: []geom.Rect{{X: 0, Y: 0, Width: 1, Height: 1}},
			want:   geom.Pt(0, 0.04),
		},
		{
			name:   "deep overlap is clamped",
			target: geom.Rect{X: 0, Y: 0, Width: 1, Height: 1},
			others: []geom.Rect{{X: 0.5, Y: 0.2, Width: 1, Height: 1}},
			want:   geom.Pt(-0.1, 0),
		},
		{
			name:   "small box slides along larger offset",
			target: geom.Rect{X: 1.7, Y: 0.9, Width: 0.2, Height: 0.2},
			others: []geom.Rect{{X: 0, Y: 0, Width: 2, Height: 2}},
			// The intersection is square, so its shape alone would pick y.
			want: geom.Pt(0.1, 0),
		},
		{
			name:   "concentric boxes do not move",
			target: geom.Rect{X: 0, Y: 0, Width: 1, Height: 1},
			others: []geom.Rect{{X: 0, Y: 0, Width: 1, Height: 1}},
			want:   geom.Point{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boxes := append([]geom.Rect{tt.target}, tt.others...)
			got := Adjustment(tt.target, boxes, 0, DefaultMaxStep)
			if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
				t.Errorf("Adjustment = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdjustmentSelfIndex(t *testing.T) {
	target := geom.Rect{X: 0, Y: 0, Width: 1, Height: 1}
	boxes := []geom.Rect{{X: 0.95, Y: 0, Width: 1, Height: 1}}

	if got := Adjustment(target, boxes, -1, DefaultMaxStep); math.Abs(got.X+0.05) > 1e-9 || got.Y != 0 {
		t.Errorf("self=-1: got %v, want (-0.05, 0)", got)
	}
	// The box at index self is skipped whatever it contains.
	if got := Adjustment(target, boxes, 0, DefaultMaxStep); !got.IsZero() {
		t.Errorf("self=0: got %v, want zero", got)
	}
}

func TestAdjustmentClampProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	randRect := func() geom.Rect {
		return geom.Rect{
			X:      r.Float64()*10 - 5,
			Y:      r.Float64()*10 - 5,
			Width:  r.Float64() * 6,
			Height: r.Float64() * 6,
		}
	}
	for i := 0; i < 500; i++ {
		n := 1 + r.IntN(30)
		boxes := make([]geom.Rect, n)
		for j := range boxes {
			boxes[j] = randRect()
		}
		d := Adjustment(boxes[0], boxes, 0, DefaultMaxStep)
		if math.Abs(d.X) > DefaultMaxStep || math.Abs(d.Y) > DefaultMaxStep {
			t.Fatalf("case %d: displacement %v exceeds ±%v", i, d, DefaultMaxStep)
		}
	}
}

func TestApplyDeltas(t *testing.T) {
	vp := newFakeViewport()
	a := NewLabel(vp, "a", WithPosition(geom.Pt(1, 1)))
	b := NewLabel(vp, "b", WithPosition(geom.Pt(2, 2)))

	moved := applyDeltas([]*Label{a, b}, []geom.Point{{X: 0.1, Y: -0.1}, {}}, 0.2)
	if moved != 1 {
		t.Errorf("moved = %d, want 1", moved)
	}
	if got := a.Position(); math.Abs(got.X-1.02) > 1e-12 || math.Abs(got.Y-0.98) > 1e-12 {
		t.Errorf("a moved to %v, want (1.02, 0.98)", got)
	}
	if got := b.Position(); got != geom.Pt(2, 2) {
		t.Errorf("b moved to %v, want unchanged", got)
	}
}
