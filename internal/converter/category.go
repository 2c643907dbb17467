package converter

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Category selects the conversion path for a source file.
type Category string

const (
	CategoryPDF   Category = "pdf"
	CategoryWord  Category = "word"
	CategoryExcel Category = "excel"
	CategoryImage Category = "image"
)

var extensionCategories = map[string]Category{
	"pdf":  CategoryPDF,
	"doc":  CategoryWord,
	"docx": CategoryWord,
	"rtf":  CategoryWord,
	"odt":  CategoryWord,
	"xls":  CategoryExcel,
	"xlsx": CategoryExcel,
	"csv":  CategoryExcel,
	"ods":  CategoryExcel,
	"jpg":  CategoryImage,
	"jpeg": CategoryImage,
	"png":  CategoryImage,
	"gif":  CategoryImage,
	"bmp":  CategoryImage,
	"webp": CategoryImage,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPDF, CategoryWord, CategoryExcel, CategoryImage:
		return true
	}
	return false
}

// Classify maps a file extension, with or without the leading dot, to its category.
func Classify(ext string) (Category, error) {
	e := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if c, ok := extensionCategories[e]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
}

// ClassifyPath classifies a file by its name.
func ClassifyPath(name string) (Category, error) {
	return Classify(filepath.Ext(name))
}

// NormalizeExt lower-cases ext and strips the leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExtensions returns every accepted extension, sorted.
func AllowedExtensions() []string {
	out := make([]string, 0, len(extensionCategories))
	for e := range extensionCategories {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
