package converter

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WriteHTML renders doc as a standalone HTML document with its own
// <html>/<head>/<body> and any document CSS in an inline <style>.
func WriteHTML(doc *Document) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&sb, "<title>%s</title>", html.EscapeString(doc.Title))
	if doc.Style != "" {
		sb.WriteString("<style>")
		sb.WriteString(doc.Style)
		sb.WriteString("</style>")
	}
	sb.WriteString("</head><body>\n")
	for _, b := range doc.Blocks {
		writeBlockHTML(&sb, b)
	}
	sb.WriteString("</body></html>\n")
	return sb.String()
}

func writeBlockHTML(sb *strings.Builder, b Block) {
	switch b.kind {
	case blockHeading:
		fmt.Fprintf(sb, "<h%d>%s</h%d>\n", b.Level, html.EscapeString(b.Text()), b.Level)
	case blockParagraph:
		sb.WriteString("<p>")
		if len(b.Runs) == 0 {
			sb.WriteString("&nbsp;")
		}
		for _, r := range b.Runs {
			writeRunHTML(sb, r)
		}
		sb.WriteString("</p>\n")
	case blockTable:
		sb.WriteString("<table>\n")
		for i, row := range b.Rows {
			tag := "td"
			if i == 0 && len(b.Rows) > 1 {
				tag = "th"
			}
			sb.WriteString("<tr>")
			for _, c := range row {
				fmt.Fprintf(sb, "<%s>%s</%s>", tag, textHTML(c), tag)
			}
			sb.WriteString("</tr>\n")
		}
		sb.WriteString("</table>\n")
	case blockImage:
		fmt.Fprintf(sb, "<img src=\"%s\" width=\"%d\" height=\"%d\" alt=\"\">\n", b.Image.DataURI(), b.Image.Width, b.Image.Height)
	}
}

func writeRunHTML(sb *strings.Builder, r Run) {
	text := textHTML(r.Text)
	if r.Underline {
		text = "<u>" + text + "</u>"
	}
	if r.Italic {
		text = "<em>" + text + "</em>"
	}
	if r.Bold {
		text = "<strong>" + text + "</strong>"
	}
	sb.WriteString(text)
}

func textHTML(s string) string {
	s = html.EscapeString(s)
	s = strings.ReplaceAll(s, "\t", "&emsp;")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// ExtractBody drops a document's own <html>/<head>/<body> wrapper. It returns
// the text of every <style> block, wherever it appeared, and the body markup
// without those blocks.
func ExtractBody(document string) ([]string, string, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, "", fmt.Errorf("parse html: %w", err)
	}
	var styles []string
	d.Find("style").Each(func(_ int, s *goquery.Selection) {
		if css := strings.TrimSpace(s.Text()); css != "" {
			styles = append(styles, css)
		}
	})
	body := d.Find("body")
	body.Find("style").Remove()
	inner, err := body.Html()
	if err != nil {
		return nil, "", fmt.Errorf("serialize body: %w", err)
	}
	return styles, strings.TrimSpace(inner), nil
}

// shellCSS only sets the page box and a base font. Document styles follow it
// so the original formatting wins.
const shellCSS = `@page { size: A4 %s; margin: 12mm; }
html, body { margin: 0; padding: 0; }
body { font-family: "DejaVu Sans", Arial, sans-serif; font-size: 11pt; line-height: 1.35; color: #000; }
img { max-width: 100%%; }`

// WrapShell places body markup and styles into a minimal print document.
func WrapShell(styles []string, body string, o Orientation) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><style>")
	fmt.Fprintf(&sb, shellCSS, o)
	sb.WriteString("</style>")
	for _, s := range styles {
		sb.WriteString("<style>")
		sb.WriteString(s)
		sb.WriteString("</style>")
	}
	sb.WriteString("</head><body>\n")
	sb.WriteString(body)
	sb.WriteString("\n</body></html>\n")
	return sb.String()
}

// ShellHTML runs doc through WriteHTML, strips the wrapper again and wraps the
// result in the print shell.
func ShellHTML(doc *Document) (string, error) {
	styles, body, err := ExtractBody(WriteHTML(doc))
	if err != nil {
		return "", err
	}
	return WrapShell(styles, body, doc.Orientation), nil
}

// captureCSS drops the page margins so the printed page box equals the A4
// slices CapturePages takes of the screen layout. Side padding stands in for
// the margins, identically in both layouts.
const captureCSS = `<style>@page { margin: 0; }
body { padding: 0 12mm; box-sizing: border-box; }</style>`

// CaptureHTML prepares a shell document for page capture. The probe render
// and the screenshots must both use its result so the page count holds.
func CaptureHTML(html string) string {
	if i := strings.LastIndex(html, "</head>"); i >= 0 {
		return html[:i] + captureCSS + html[i:]
	}
	return captureCSS + html
}

const imagePageCSS = `@page { size: A4 %s; margin: 0; }
html, body { margin: 0; padding: 0; height: 100%%; }
.frame { display: flex; align-items: center; justify-content: center; width: 100%%; height: 100vh; }
.frame img { max-width: 100%%; max-height: 100vh; object-fit: contain; }`

// ImagePageHTML centres img on a single page of orientation o.
func ImagePageHTML(img OptimizedImage, o Orientation) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><style>")
	fmt.Fprintf(&sb, imagePageCSS, o)
	sb.WriteString("</style></head><body><div class=\"frame\">")
	fmt.Fprintf(&sb, "<img src=\"%s\" alt=\"\">", img.DataURI())
	sb.WriteString("</div></body></html>\n")
	return sb.String()
}

// minimalCSS is the last-resort styling used when the native writer fails.
const minimalCSS = `body { font-family: Arial, sans-serif; font-size: 10pt; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ccc; padding: 2px; }`

// MinimalHTML renders doc with minimalCSS instead of the document's own styles.
func MinimalHTML(doc *Document) string {
	plain := *doc
	plain.Style = minimalCSS
	return WriteHTML(&plain)
}
