package converter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Orientation of an A4 page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

type blockKind int

const (
	blockHeading blockKind = iota
	blockParagraph
	blockTable
	blockImage
)

// Run is a span of text sharing one character style.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

// Block is one vertical element of a Document.
type Block struct {
	kind  blockKind
	Level int // heading level, 1-6
	Runs  []Run
	Rows  [][]string // table cells, first row is the header
	Image *OptimizedImage
}

// Text flattens the runs of a heading or paragraph.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Document is the format neutral content the native and HTML writers share.
type Document struct {
	Title       string
	Orientation Orientation
	Style       string // extra CSS carried into the HTML rendition
	Blocks      []Block
}

func (d *Document) addHeading(level int, text string) {
	d.Blocks = append(d.Blocks, Block{kind: blockHeading, Level: level, Runs: []Run{{Text: text}}})
}

func (d *Document) addParagraph(runs []Run) {
	d.Blocks = append(d.Blocks, Block{kind: blockParagraph, Runs: runs})
}

func (d *Document) addTable(rows [][]string) {
	d.Blocks = append(d.Blocks, Block{kind: blockTable, Rows: rows})
}

func (d *Document) addImage(img OptimizedImage) {
	d.Blocks = append(d.Blocks, Block{kind: blockImage, Image: &img})
}

// LoadDocument reads src into a Document using the in-process reader for its
// format. Formats only an office suite understands return ErrNoReader.
func LoadDocument(src string, cat Category, maxImageDim int) (*Document, error) {
	ext := NormalizeExt(filepath.Ext(src))
	title := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))

	switch cat {
	case CategoryWord:
		if ext != "docx" {
			return nil, fmt.Errorf("%w: .%s", ErrNoReader, ext)
		}
		return readDOCX(src, title)
	case CategoryExcel:
		switch ext {
		case "xlsx", "xlsm":
			return readWorkbook(src, title)
		case "csv":
			return readCSV(src, title)
		}
		return nil, fmt.Errorf("%w: .%s", ErrNoReader, ext)
	case CategoryImage:
		info, err := ProbeImage(src)
		if err != nil {
			return nil, err
		}
		img, err := OptimizeImage(src, info.MIME, info.Width, info.Height, maxImageDim)
		if err != nil {
			return nil, err
		}
		doc := &Document{Title: title, Orientation: info.Orientation()}
		doc.addImage(img)
		return doc, nil
	}
	return nil, fmt.Errorf("%w: category %s", ErrNoReader, cat)
}

// soleImage returns the image of a document made of a single image block.
func (d *Document) soleImage() *OptimizedImage {
	if len(d.Blocks) == 1 && d.Blocks[0].kind == blockImage {
		return d.Blocks[0].Image
	}
	return nil
}
