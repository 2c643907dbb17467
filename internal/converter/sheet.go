package converter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetStyle = `table { width: 100%; border-collapse: collapse; table-layout: auto; }
td, th { border: 1px solid #999; padding: 2px 4px; font-size: 9pt; vertical-align: top; }
th { background: #eee; }`

// readWorkbook turns every visible sheet into a heading plus a table limited
// to the sheet's used range.
func readWorkbook(path, title string) (*Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	doc := &Document{Title: title, Orientation: Landscape, Style: sheetStyle}
	sheets := f.GetSheetList()
	for _, sheet := range sheets {
		if visible, err := f.GetSheetVisible(sheet); err == nil && !visible {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		rows = usedRange(rows)
		if len(rows) == 0 {
			continue
		}
		if len(sheets) > 1 {
			doc.addHeading(2, sheet)
		}
		doc.addTable(rows)
	}
	return doc, nil
}

func readCSV(path, title string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}

	doc := &Document{Title: title, Orientation: Landscape, Style: sheetStyle}
	if rows = usedRange(rows); len(rows) > 0 {
		doc.addTable(rows)
	}
	return doc, nil
}

// usedRange trims trailing blank rows and columns, then pads rows to the
// last used column so no blank trailing pages are produced.
func usedRange(rows [][]string) [][]string {
	lastRow, lastCol := -1, -1
	for i, r := range rows {
		for j, c := range r {
			if strings.TrimSpace(c) != "" {
				lastRow = max(lastRow, i)
				lastCol = max(lastCol, j)
			}
		}
	}
	if lastRow < 0 {
		return nil
	}
	out := make([][]string, lastRow+1)
	for i := 0; i <= lastRow; i++ {
		row := make([]string, lastCol+1)
		copy(row, rows[i])
		out[i] = row
	}
	return out
}

// PrepareWorkbook copies an xlsx workbook into dir with A4 landscape page
// setup, fit to one page wide and a print area covering each sheet's used
// range. The copy keeps the source base name because office suites derive
// the output name from it.
func PrepareWorkbook(src, dir string) (string, error) {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if err := setPrintLayout(f, sheet, usedRange(rows)); err != nil {
			return "", fmt.Errorf("page setup for %q: %w", sheet, err)
		}
	}

	out := filepath.Join(dir, filepath.Base(src))
	if err := f.SaveAs(out); err != nil {
		return "", fmt.Errorf("save prepared workbook: %w", err)
	}
	return out, nil
}

func setPrintLayout(f *excelize.File, sheet string, used [][]string) error {
	var (
		a4        = 9
		landscape = "landscape"
		fitWidth  = 1
		fitHeight = 0
		fitToPage = true
	)
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{
		Size:        &a4,
		Orientation: &landscape,
		FitToWidth:  &fitWidth,
		FitToHeight: &fitHeight,
	}); err != nil {
		return err
	}
	if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{FitToPage: &fitToPage}); err != nil {
		return err
	}
	if len(used) == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(len(used[0]), len(used), true)
	if err != nil {
		return err
	}
	area := &excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: fmt.Sprintf("'%s'!$A$1:%s", strings.ReplaceAll(sheet, "'", "''"), last),
		Scope:    sheet,
	}
	_ = f.DeleteDefinedName(&excelize.DefinedName{Name: area.Name, Scope: sheet})
	return f.SetDefinedName(area)
}
