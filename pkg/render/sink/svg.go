package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/collage/pkg/collage"
)

const itemInteractionCSS = `
    .item rect { stroke: %s; stroke-width: 1; transition: stroke-width 0.2s ease; }
    .item.selected rect { stroke: %s; stroke-width: 3; }
    .item:hover rect { stroke-width: 3; }
    .camera { fill: none; stroke: %s; stroke-dasharray: 6 4; }
    text { font-family: 'Go', 'Helvetica Neue', Arial, sans-serif; fill: %s; }
    .caption { transition: opacity 0.2s ease; }
    .item:hover + .caption, .caption:hover { opacity: 1 !important; }
    a { cursor: pointer; }`

// RenderSVG draws the snapshot as an SVG document.
func RenderSVG(s collage.Snapshot, opts ...Option) []byte {
	c := newConfig(opts)
	f := newFrame(s, c)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.width, f.height, f.width, f.height)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(c.title))
	fmt.Fprintf(&buf, "  <style>"+itemInteractionCSS+"\n  </style>\n", colorStroke, colorSelected, colorSelected, colorText)
	fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		f.width, f.height, colorBackground)

	for _, it := range s.Items {
		renderItem(&buf, f, c, it)
	}
	if c.labels {
		for _, it := range s.Items {
			renderLabels(&buf, f, it)
		}
	}
	if !c.viewport {
		r := f.rect(s.Viewport)
		fmt.Fprintf(&buf, `  <rect class="camera" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
			r.X, r.Y, r.Width, r.Height)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderItem(buf *bytes.Buffer, f frame, c config, it collage.ItemState) {
	r := f.rect(it.Bounds)
	class := "item"
	if it.Selected {
		class += " selected"
	}
	fmt.Fprintf(buf, `  <g class="%s" id="item-%s">`+"\n", class, html.EscapeString(it.ID))
	fmt.Fprintf(buf, "    <title>%s</title>\n", html.EscapeString(collage.Attribution{Title: it.Title, Owner: it.Owner}.Text()))
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		r.X, r.Y, r.Width, r.Height, itemColor(it.ID))
	if c.images && it.Source != "" {
		fmt.Fprintf(buf, `    <image href="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="xMidYMid slice"/>`+"\n",
			html.EscapeString(it.Source), r.X, r.Y, r.Width, r.Height)
	}
	buf.WriteString("  </g>\n")
}

func renderLabels(buf *bytes.Buffer, f frame, it collage.ItemState) {
	if it.Caption != nil && it.Caption.Visible {
		pre, post := "", ""
		if it.PageURL != "" {
			pre = fmt.Sprintf(`  <a href="%s" target="_blank">`+"\n", html.EscapeString(it.PageURL))
			post = "  </a>\n"
		}
		buf.WriteString(pre)
		renderText(buf, f, "caption", *it.Caption)
		buf.WriteString(post)
	}
	for _, t := range it.Tags {
		if t.Visible {
			renderText(buf, f, "tag", t)
		}
	}
}

func renderText(buf *bytes.Buffer, f frame, class string, l collage.LabelState) {
	r := f.rect(l.Bounds)
	fmt.Fprintf(buf, `  <text class="%s" x="%.2f" y="%.2f" font-size="%.2f" opacity="%.2f">%s</text>`+"\n",
		class, r.X, r.Y+r.Height*0.8, r.Height, l.Opacity, html.EscapeString(l.Text))
}
