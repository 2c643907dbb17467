package converter

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readDOCX stream-parses word/document.xml into headings, paragraphs with
// run formatting, and tables.
func readDOCX(path, title string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("word/document.xml not found in %s", path)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	doc := &Document{Title: title, Orientation: Portrait}
	if err := parseWordXML(rc, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

type wordParser struct {
	doc *Document

	heading int
	runs    []Run
	cur     Run
	inRun   bool
	inText  bool

	// table state; tables may nest, only the outermost is kept as a table
	tableDepth int
	rows       [][]string
	row        []string
	cell       strings.Builder
}

func parseWordXML(r io.Reader, doc *Document) error {
	p := &wordParser{doc: doc}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t)
		case xml.EndElement:
			p.end(t)
		case xml.CharData:
			if p.inText {
				p.cur.Text += string(t)
			}
		}
	}
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggled reads w:b / w:i style booleans where a missing w:val means on.
func toggled(e xml.StartElement) bool {
	v := attr(e, "val")
	return v == "" || v == "1" || v == "true" || v == "on"
}

func (p *wordParser) start(e xml.StartElement) {
	switch e.Name.Local {
	case "tbl":
		p.tableDepth++
		if p.tableDepth == 1 {
			p.rows = nil
		}
	case "tr":
		if p.tableDepth == 1 {
			p.row = nil
		}
	case "tc":
		if p.tableDepth == 1 {
			p.cell.Reset()
		}
	case "p":
		p.heading = 0
		p.runs = nil
	case "pStyle":
		p.heading = headingLevel(attr(e, "val"))
	case "r":
		p.inRun = true
		p.cur = Run{}
	case "b":
		if p.inRun {
			p.cur.Bold = toggled(e)
		}
	case "i":
		if p.inRun {
			p.cur.Italic = toggled(e)
		}
	case "u":
		if p.inRun {
			v := attr(e, "val")
			p.cur.Underline = v != "none" && v != "0"
		}
	case "t":
		p.inText = true
	case "tab":
		if p.inRun {
			p.cur.Text += "\t"
		}
	case "br", "cr":
		if p.inRun {
			p.cur.Text += "\n"
		}
	}
}

func (p *wordParser) end(e xml.EndElement) {
	switch e.Name.Local {
	case "t":
		p.inText = false
	case "r":
		if p.inRun && p.cur.Text != "" {
			p.runs = append(p.runs, p.cur)
		}
		p.inRun = false
	case "p":
		if p.tableDepth > 0 {
			if p.cell.Len() > 0 {
				p.cell.WriteByte('\n')
			}
			for _, r := range p.runs {
				p.cell.WriteString(r.Text)
			}
			return
		}
		p.flushParagraph()
	case "tc":
		if p.tableDepth == 1 {
			p.row = append(p.row, strings.TrimSpace(p.cell.String()))
		}
	case "tr":
		if p.tableDepth == 1 {
			p.rows = append(p.rows, p.row)
		}
	case "tbl":
		p.tableDepth--
		if p.tableDepth == 0 && len(p.rows) > 0 {
			p.doc.addTable(padRows(p.rows))
		}
	}
}

func (p *wordParser) flushParagraph() {
	if p.heading > 0 {
		var sb strings.Builder
		for _, r := range p.runs {
			sb.WriteString(r.Text)
		}
		if txt := strings.TrimSpace(sb.String()); txt != "" {
			p.doc.addHeading(p.heading, txt)
		}
		return
	}
	// Empty paragraphs are kept: they carry vertical spacing.
	p.doc.addParagraph(p.runs)
}

// headingLevel understands "Heading1".."Heading6" and "Title".
func headingLevel(style string) int {
	s := strings.ToLower(style)
	if s == "title" {
		return 1
	}
	if !strings.HasPrefix(s, "heading") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "heading"))
	if err != nil || n < 1 {
		return 0
	}
	return min(n, 6)
}

// padRows makes every row as wide as the widest one.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		rows[i] = r
	}
	return rows
}
