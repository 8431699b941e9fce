package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/collage/pkg/collage"
)

// ToDOT converts the snapshot to its overlap graph in Graphviz DOT format.
// Every item becomes a box pinned at its framed center (in points, y up as
// Graphviz expects); every overlapping pair becomes an edge labelled with
// the shared area in scene units. The selected item is highlighted.
//
// The result can be rendered with [RenderDOTSVG].
func ToDOT(s collage.Snapshot, opts ...Option) string {
	c := newConfig(opts)
	f := newFrame(s, c)

	var buf bytes.Buffer
	buf.WriteString("graph collage {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.1,0.05\"];\n")
	buf.WriteString("\n")

	for _, it := range s.Items {
		r := f.rect(it.Bounds)
		cx, cy := r.X+r.Width/2, f.height-(r.Y+r.Height/2)
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(it, c.labels)),
			fmt.Sprintf("pos=\"%.1f,%.1f!\"", cx, cy),
			fmt.Sprintf("fillcolor=%q", hexColor(itemColor(it.ID))),
		}
		if it.Selected {
			attrs = append(attrs, "penwidth=3", fmt.Sprintf("color=%q", hexColor(colorSelected)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", it.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range Overlaps(s) {
		fmt.Fprintf(&buf, "  %q -- %q [label=\"%.3g\"];\n", p.A, p.B, p.Area)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(it collage.ItemState, detailed bool) string {
	if !detailed || it.Title == "" {
		return it.ID
	}
	return it.Title + "\n" + it.ID
}

func hexColor(c rgb) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RenderDOTSVG lays out a DOT graph with neato, honoring pinned positions,
// and renders it to SVG.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg element with one whose viewBox
// starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
