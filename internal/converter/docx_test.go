package converter

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Quarterly report</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Revenue</w:t></w:r><w:r><w:t xml:space="preserve"> grew</w:t></w:r><w:r><w:rPr><w:i w:val="0"/></w:rPr><w:tab/><w:t>fast</w:t></w:r></w:p>
<w:p/>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Region</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Total</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>North</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body>
</w:document>`

func writeDOCX(t *testing.T, dir, documentXML string) string {
	t.Helper()
	path := filepath.Join(dir, "report.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestReadDOCX(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), sampleDocumentXML)

	doc, err := LoadDocument(path, CategoryWord, 0)
	require.NoError(t, err)
	assert.Equal(t, "report", doc.Title)
	assert.Equal(t, Portrait, doc.Orientation)
	require.Len(t, doc.Blocks, 4)

	assert.Equal(t, blockHeading, doc.Blocks[0].kind)
	assert.Equal(t, 1, doc.Blocks[0].Level)
	assert.Equal(t, "Quarterly report", doc.Blocks[0].Text())

	para := doc.Blocks[1]
	assert.Equal(t, blockParagraph, para.kind)
	require.Len(t, para.Runs, 3)
	assert.True(t, para.Runs[0].Bold)
	assert.Equal(t, " grew", para.Runs[1].Text)
	assert.False(t, para.Runs[2].Italic)
	assert.Equal(t, "\tfast", para.Runs[2].Text)

	assert.Equal(t, blockParagraph, doc.Blocks[2].kind)
	assert.Empty(t, doc.Blocks[2].Runs)

	assert.Equal(t, blockTable, doc.Blocks[3].kind)
	assert.Equal(t, [][]string{{"Region", "Total"}, {"North", ""}}, doc.Blocks[3].Rows)
}

func TestReadDOCX_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	_, err := LoadDocument(path, CategoryWord, 0)
	assert.Error(t, err)
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("Title"))
	assert.Equal(t, 2, headingLevel("Heading2"))
	assert.Equal(t, 6, headingLevel("heading9"))
	assert.Equal(t, 0, headingLevel("Normal"))
	assert.Equal(t, 0, headingLevel("HeadingX"))
}
