package sink

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/collage/pkg/buildinfo"
	"github.com/matzehuels/collage/pkg/collage"
	"github.com/matzehuels/collage/pkg/errors"
)

// RenderPDF draws the snapshot on a single page sized to the frame, one
// point per output pixel.
func RenderPDF(s collage.Snapshot, opts ...Option) ([]byte, error) {
	c := newConfig(opts)
	f := newFrame(s, c)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: f.width, Ht: f.height},
	})
	pdf.SetTitle(c.title, true)
	pdf.SetCreator("collage "+buildinfo.Version, true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	setFill(pdf, colorBackground)
	pdf.Rect(0, 0, f.width, f.height, "F")

	for _, it := range s.Items {
		r := f.rect(it.Bounds)
		setFill(pdf, itemColor(it.ID))
		if it.Selected {
			setDraw(pdf, colorSelected)
			pdf.SetLineWidth(3)
		} else {
			setDraw(pdf, colorStroke)
			pdf.SetLineWidth(1)
		}
		pdf.Rect(r.X, r.Y, r.Width, r.Height, "FD")
	}

	if c.labels {
		setText(pdf, colorText)
		for _, it := range s.Items {
			if it.Caption != nil && it.Caption.Visible {
				pdfText(pdf, f, tr(it.Caption.Text), *it.Caption, "")
			}
			for _, t := range it.Tags {
				if t.Visible {
					pdfText(pdf, f, tr(t.Text), t, "B")
				}
			}
		}
		pdf.SetAlpha(1, "Normal")
	}

	if !c.viewport {
		r := f.rect(s.Viewport)
		setDraw(pdf, colorSelected)
		pdf.SetLineWidth(1)
		pdf.SetDashPattern([]float64{6, 4}, 0)
		pdf.Rect(r.X, r.Y, r.Width, r.Height, "D")
		pdf.SetDashPattern(nil, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write pdf")
	}
	return buf.Bytes(), nil
}

func pdfText(pdf *gofpdf.Fpdf, f frame, text string, l collage.LabelState, style string) {
	r := f.rect(l.Bounds)
	pdf.SetAlpha(l.Opacity, "Normal")
	pdf.SetFont("Helvetica", style, r.Height)
	pdf.Text(r.X, r.Y+r.Height*0.8, text)
}

func setFill(pdf *gofpdf.Fpdf, c rgb) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
func setDraw(pdf *gofpdf.Fpdf, c rgb) { pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }
func setText(pdf *gofpdf.Fpdf, c rgb) { pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }
