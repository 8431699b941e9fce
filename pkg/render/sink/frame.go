package sink

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
)

const (
	// DefaultWidth is the output width in pixels (points for PDF).
	DefaultWidth = 1024.0

	// margin pads the framed area by this fraction of its longer side.
	margin = 0.05
)

// Formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
)

// Formats lists every supported format.
var Formats = []string{FormatSVG, FormatJSON, FormatPDF, FormatDOT}

// Option configures a sink.
type Option func(*config)

type config struct {
	width    float64
	viewport bool
	labels   bool
	images   bool
	title    string
}

func WithWidth(px float64) Option   { return func(c *config) { c.width = px } }
func WithViewport() Option          { return func(c *config) { c.viewport = true } }
func WithoutLabels() Option         { return func(c *config) { c.labels = false } }
func WithImages() Option            { return func(c *config) { c.images = true } }
func WithTitle(title string) Option { return func(c *config) { c.title = title } }

func newConfig(opts []Option) config {
	c := config{width: DefaultWidth, labels: true, title: "collage"}
	for _, opt := range opts {
		opt(&c)
	}
	if c.width <= 0 {
		c.width = DefaultWidth
	}
	return c
}

// frame maps scene coordinates to output coordinates.
type frame struct {
	view   geom.Rect
	scale  float64
	width  float64
	height float64
}

func newFrame(s collage.Snapshot, c config) frame {
	view := s.SceneBounds()
	if c.viewport {
		view = s.Viewport
	} else {
		view = view.Inflate(margin * math.Max(view.Width, view.Height))
	}
	if view.IsEmpty() {
		view = geom.RectAround(view.Center(), geom.Size{W: 1, H: 1})
	}
	scale := c.width / view.Width
	return frame{view: view, scale: scale, width: c.width, height: view.Height * scale}
}

func (f frame) rect(r geom.Rect) geom.Rect {
	return geom.Rect{
		X:      (r.X - f.view.X) * f.scale,
		Y:      (r.Y - f.view.Y) * f.scale,
		Width:  r.Width * f.scale,
		Height: r.Height * f.scale,
	}
}

// Pair is two overlapping items.
type Pair struct {
	A, B string
	Area float64
}

// Overlaps returns every pair of intersecting items, in snapshot order.
func Overlaps(s collage.Snapshot) []Pair {
	var out []Pair
	for i := range s.Items {
		for j := i + 1; j < len(s.Items); j++ {
			if inter, ok := geom.Intersection(s.Items[i].Bounds, s.Items[j].Bounds); ok {
				out = append(out, Pair{A: s.Items[i].ID, B: s.Items[j].ID, Area: inter.Area()})
			}
		}
	}
	return out
}

// rgb is an 8-bit color.
type rgb struct{ R, G, B uint8 }

func (c rgb) String() string { return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B) }

// itemColor derives a stable muted color from an item id.
func itemColor(id string) rgb {
	h := fnv.New32a()
	h.Write([]byte(id))
	return hsl(float64(h.Sum32()%360), 0.35, 0.55)
}

func hsl(h, s, l float64) rgb {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to := func(v float64) uint8 { return uint8(math.Round((v + m) * 255)) }
	return rgb{to(r), to(g), to(b)}
}

// Palette.
var (
	colorBackground = rgb{17, 17, 17}
	colorText       = rgb{255, 255, 255}
	colorSelected   = rgb{232, 89, 12}
	colorStroke     = rgb{51, 51, 51}
)
