package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin    = 15.0 // mm
	tableFontSize = 8.0
	tableRowH     = 5.5
	bodyFontSize  = 11.0
	bodyLineH     = 5.5
	minColWidth   = 8.0
)

var headingSizes = [7]float64{0, 20, 16, 14, 12.5, 11.5, 11}

func fpdfOrientation(o Orientation) string {
	if o == Landscape {
		return "L"
	}
	return "P"
}

// WritePDF renders doc with the built-in PDF writer. Text uses the core
// Helvetica family, so characters outside Windows-1252 are substituted.
func WritePDF(doc *Document, w io.Writer) error {
	pdf := fpdf.New(fpdfOrientation(doc.Orientation), "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("docconvert", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pw := &pdfWriter{pdf: pdf, tr: tr}
	for i, b := range doc.Blocks {
		if err := pw.block(i, b); err != nil {
			return err
		}
		if pdf.Err() {
			return pdf.Error()
		}
	}
	return pdf.Output(w)
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *pdfWriter) contentWidth() float64 {
	w, _ := p.pdf.GetPageSize()
	l, _, r, _ := p.pdf.GetMargins()
	return w - l - r
}

func (p *pdfWriter) block(i int, b Block) error {
	switch b.kind {
	case blockHeading:
		p.pdf.SetFont("Helvetica", "B", headingSizes[min(max(b.Level, 1), 6)])
		p.pdf.MultiCell(0, headingSizes[min(max(b.Level, 1), 6)]*0.5, p.tr(b.Text()), "", "L", false)
		p.pdf.Ln(2)
	case blockParagraph:
		p.paragraph(b.Runs)
	case blockTable:
		p.table(b.Rows)
	case blockImage:
		return p.image(i, b.Image)
	}
	return nil
}

func (p *pdfWriter) paragraph(runs []Run) {
	for _, r := range runs {
		style := ""
		if r.Bold {
			style += "B"
		}
		if r.Italic {
			style += "I"
		}
		if r.Underline {
			style += "U"
		}
		p.pdf.SetFont("Helvetica", style, bodyFontSize)
		p.pdf.Write(bodyLineH, p.tr(strings.ReplaceAll(r.Text, "\t", "    ")))
	}
	p.pdf.Ln(bodyLineH + 1.5)
}

// table lays rows out fit-to-width: column widths follow their widest cell
// and are scaled so the table spans the printable width exactly.
func (p *pdfWriter) table(rows [][]string) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	cols := len(rows[0])
	p.pdf.SetFont("Helvetica", "", tableFontSize)

	widths := make([]float64, cols)
	for _, r := range rows {
		for j := 0; j < cols && j < len(r); j++ {
			widths[j] = max(widths[j], p.pdf.GetStringWidth(p.tr(r[j]))+2)
		}
	}
	total := 0.0
	for j := range widths {
		widths[j] = max(widths[j], minColWidth)
		total += widths[j]
	}
	avail := p.contentWidth()
	scale := avail / total
	fontSize := tableFontSize
	if scale < 1 {
		fontSize = max(tableFontSize*scale, 4)
	}
	for j := range widths {
		widths[j] *= scale
	}

	p.pdf.SetFillColor(235, 235, 235)
	for i, r := range rows {
		header := i == 0 && len(rows) > 1
		style := ""
		if header {
			style = "B"
		}
		p.pdf.SetFont("Helvetica", style, fontSize)
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(r) {
				cell = p.fit(p.tr(strings.ReplaceAll(r[j], "\n", " ")), widths[j]-1)
			}
			ln := 0
			if j == cols-1 {
				ln = 1
			}
			p.pdf.CellFormat(widths[j], tableRowH, cell, "1", ln, "L", header, 0, "")
		}
	}
	p.pdf.Ln(3)
}

// fit shortens s with a trailing ellipsis until it fits into width.
func (p *pdfWriter) fit(s string, width float64) string {
	if p.pdf.GetStringWidth(s) <= width {
		return s
	}
	const ellipsis = "\x85" // cp1252 horizontal ellipsis
	r := []byte(s)
	for len(r) > 0 && p.pdf.GetStringWidth(string(r)+ellipsis) > width {
		r = r[:len(r)-1]
	}
	return string(r) + ellipsis
}

// image centres img in the printable area keeping its aspect ratio.
func (p *pdfWriter) image(i int, img *OptimizedImage) error {
	data, typ, err := fpdfImage(img)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("img%d", i)
	opts := fpdf.ImageOptions{ImageType: typ}
	info := p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if p.pdf.Err() {
		return p.pdf.Error()
	}

	pw, ph := p.pdf.GetPageSize()
	availW, availH := pw-2*pageMargin, ph-2*pageMargin
	iw, ih := info.Width(), info.Height()
	scale := min(availW/iw, availH/ih)
	w, h := iw*scale, ih*scale
	p.pdf.ImageOptions(name, (pw-w)/2, (ph-h)/2, w, h, false, opts, 0, "")
	return nil
}

// fpdfImage returns bytes fpdf can embed. BMP and WebP are re-encoded as PNG.
func fpdfImage(img *OptimizedImage) ([]byte, string, error) {
	switch img.MIME {
	case "image/jpeg", "image/jpg":
		return img.Data, "JPG", nil
	case "image/png":
		return img.Data, "PNG", nil
	case "image/gif":
		return img.Data, "GIF", nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", img.MIME, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "PNG", nil
}

// AssemblePages writes one full-bleed A4 page per PNG file, no margins.
func AssemblePages(pngPaths []string, o Orientation, w io.Writer) error {
	if len(pngPaths) == 0 {
		return fmt.Errorf("no pages to assemble")
	}
	pdf := fpdf.New(fpdfOrientation(o), "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pw, ph := pdf.GetPageSize()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for _, path := range pngPaths {
		pdf.AddPage()
		pdf.ImageOptions(path, 0, 0, pw, ph, false, opts, 0, "")
		if pdf.Err() {
			return pdf.Error()
		}
	}
	return pdf.Output(w)
}
