package headless

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Measurer returns the rendered width of text at a font height, both in
// scene units.
type Measurer interface {
	Measure(text string, height float64, bold bool) float64
}

// refSize is the pixel size glyph advances are measured at before scaling to
// the requested height.
const refSize = 64

// FontMeasurer measures with the Go Regular and Go Bold faces.
type FontMeasurer struct {
	regular font.Face
	bold    font.Face
	mu      sync.Mutex
}

// NewFontMeasurer parses the embedded Go fonts. When parsing fails it falls
// back to the fixed-width basicfont face.
func NewFontMeasurer() *FontMeasurer {
	m := &FontMeasurer{}
	m.regular = parseFace(goregular.TTF)
	m.bold = parseFace(gobold.TTF)
	return m
}

func parseFace(ttf []byte) font.Face {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    refSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	return face
}

// Measure implements Measurer.
func (m *FontMeasurer) Measure(text string, height float64, bold bool) float64 {
	face := m.regular
	if bold && m.bold != nil {
		face = m.bold
	}
	if face == nil {
		return basicWidth(text, height)
	}
	// opentype faces cache glyph data and are not safe for concurrent use.
	m.mu.Lock()
	adv := font.MeasureString(face, text)
	m.mu.Unlock()
	return fixedToFloat(adv) * height / refSize
}

// basicWidth measures with the 7x13 bitmap face.
func basicWidth(text string, height float64) float64 {
	face := basicfont.Face7x13
	adv := font.MeasureString(face, text)
	return fixedToFloat(adv) * height / float64(face.Height)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
