package sink

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/geom"
)

func testSnapshot() collage.Snapshot {
	return collage.Snapshot{
		Frame:    42,
		Viewport: geom.Rect{X: -1, Y: -1, Width: 4, Height: 3},
		Selected: "b",
		Items: []collage.ItemState{
			{
				ID:      "a",
				Title:   "Organ Slice",
				Owner:   "SomeOwner",
				Source:  "/slide/a/image.dzi",
				PageURL: "https://example.org/a",
				Bounds:  geom.Rect{X: 0, Y: 0, Width: 1, Height: 0.75},
				Caption: &collage.LabelState{
					Text:    "Organ Slice by SomeOwner",
					Bounds:  geom.Rect{X: 0, Y: 0.75, Width: 0.8, Height: 0.05},
					Opacity: 0.6,
					Visible: true,
				},
				Tags: []collage.LabelState{
					{Text: "tag0", Bounds: geom.Rect{X: 0, Y: -0.05, Width: 0.2, Height: 0.05}, Opacity: 0.6, Visible: true},
					{Text: "hidden", Bounds: geom.Rect{X: 5, Y: 5, Width: 0.2, Height: 0.05}},
				},
			},
			{
				ID:       "b",
				Title:    "Kidney <stain>",
				Source:   "/slide/b/image.dzi",
				Bounds:   geom.Rect{X: 0.5, Y: 0.5, Width: 1, Height: 0.75},
				Selected: true,
				Z:        1,
			},
			{
				ID:     "c",
				Bounds: geom.Rect{X: 3, Y: 0, Width: 1, Height: 0.75},
			},
		},
	}
}

func TestOverlaps(t *testing.T) {
	pairs := Overlaps(testSnapshot())
	if len(pairs) != 1 {
		t.Fatalf("pairs = %v, want one", pairs)
	}
	p := pairs[0]
	if p.A != "a" || p.B != "b" || p.Area != 0.5*0.25 {
		t.Errorf("pair = %+v", p)
	}
}

func TestOverlapsTouchingEdges(t *testing.T) {
	s := collage.Snapshot{Items: []collage.ItemState{
		{ID: "a", Bounds: geom.Rect{X: 0, Y: 0, Width: 1, Height: 1}},
		{ID: "b", Bounds: geom.Rect{X: 1, Y: 0, Width: 1, Height: 1}},
	}}
	if pairs := Overlaps(s); len(pairs) != 0 {
		t.Errorf("touching items reported as overlapping: %v", pairs)
	}
}

func TestRenderSVG(t *testing.T) {
	out := RenderSVG(testSnapshot(), WithWidth(800))

	dec := xml.NewDecoder(bytes.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("malformed SVG: %v\n%s", err, out)
		}
	}

	s := string(out)
	for _, want := range []string{
		`width="800"`,
		`id="item-a"`,
		`class="item selected" id="item-b"`,
		`Kidney &lt;stain&gt;`,
		`href="https://example.org/a"`,
		`>tag0</text>`,
		`class="camera"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(s, "hidden") {
		t.Error("invisible label was drawn")
	}
	if strings.Contains(s, "<image") {
		t.Error("images drawn without WithImages")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		want    []string
		notWant []string
	}{
		{"no labels", []Option{WithoutLabels()}, nil, []string{"<text"}},
		{"images", []Option{WithImages()}, []string{`<image href="/slide/a/image.dzi"`}, nil},
		{"viewport", []Option{WithViewport()}, nil, []string{`class="camera"`}},
		{"title", []Option{WithTitle("histology")}, []string{"<title>histology</title>"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := string(RenderSVG(testSnapshot(), tt.opts...))
			for _, w := range tt.want {
				if !strings.Contains(s, w) {
					t.Errorf("missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(s, w) {
					t.Errorf("unexpected %q", w)
				}
			}
		})
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	out := RenderSVG(collage.Snapshot{Viewport: geom.Rect{X: -4, Y: -3, Width: 8, Height: 6}})
	if !bytes.HasPrefix(out, []byte("<svg")) {
		t.Errorf("output = %s", out)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := testSnapshot()
	data, err := RenderJSON(in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Frame != in.Frame || got.Selected != "b" || len(got.Items) != 3 {
		t.Errorf("got %+v", got)
	}
	if got.Items[0].Caption == nil || got.Items[0].Caption.Text != in.Items[0].Caption.Text {
		t.Error("caption lost")
	}
	if !strings.Contains(string(data), `"overlaps"`) {
		t.Error("overlaps missing from output")
	}
}

func TestReadJSONInvalid(t *testing.T) {
	if _, err := ReadJSON([]byte("{")); err == nil {
		t.Error("expected error")
	}
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(testSnapshot(), WithTitle("histology"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("not a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testSnapshot())
	for _, want := range []string{
		"graph collage {",
		`"a" [label="Organ Slice\na"`,
		`"a" -- "b" [label="0.125"]`,
		"penwidth=3",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"c" --`) || strings.Contains(dot, `-- "c"`) {
		t.Error("disjoint item has an edge")
	}

	plain := ToDOT(testSnapshot(), WithoutLabels())
	if !strings.Contains(plain, `"a" [label="a"`) {
		t.Errorf("labels not suppressed:\n%s", plain)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.HasPrefix(got, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20">`) {
		t.Errorf("got %s", got)
	}
	if out := normalizeViewBox([]byte("<svg/>")); string(out) != "<svg/>" {
		t.Error("svg without viewBox should be unchanged")
	}
}
