package model

import "time"

// FileType classifies how an uploaded document is turned into a PDF.
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeWord  FileType = "word"
	FileTypeExcel FileType = "excel"
	FileTypeImage FileType = "image"
)

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypePDF, FileTypeWord, FileTypeExcel, FileTypeImage:
		return true
	}
	return false
}

// Document represents an uploaded file together with its PDF rendition.
// Path and PDFPath are storage keys owned by the record: both exist for as long
// as the row exists. FileType is fixed at creation.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	PDFPath   string    `json:"pdf_path"`
	FileType  FileType  `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}
