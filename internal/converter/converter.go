// Package converter turns uploaded documents into PDF files. Each category has
// an ordered chain of strategies; the first one that produces a valid PDF wins.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"docconvert/internal/storage"
)

// ObjectPutter is the part of storage.Storage the converter writes through.
type ObjectPutter interface {
	Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error)
}

// ErrStoreFailed wraps failures to upload a converted PDF.
var ErrStoreFailed = errors.New("store converted pdf")

// Converter is the single conversion entry point.
type Converter struct {
	chain   *Chain
	tempDir string
	log     *slog.Logger
	closers []io.Closer
}

// New wraps chain. Scratch files go under tempDir, or the OS default when empty.
func New(chain *Chain, tempDir string, log *slog.Logger) *Converter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{chain: chain, tempDir: tempDir, log: log}
}

// Convert writes a PDF rendition of src to dst. An empty hint classifies src
// by extension. PDFs are copied unchanged.
func (c *Converter) Convert(ctx context.Context, src, dst string, hint Category) (Category, error) {
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, src)
		}
		return "", err
	}

	cat := hint
	if cat == "" {
		var err error
		if cat, err = ClassifyPath(src); err != nil {
			return "", err
		}
	} else if !cat.Valid() {
		return "", fmt.Errorf("%w: category %q", ErrUnsupportedFileType, hint)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return cat, fmt.Errorf("create output dir: %w", err)
	}
	if cat == CategoryPDF {
		if err := copyFile(src, dst); err != nil {
			return cat, fmt.Errorf("copy pdf: %w", err)
		}
		return cat, nil
	}
	return cat, c.chain.Run(ctx, src, dst, cat)
}

// ConvertToStorage converts src and uploads the result under
// storage.PDFKey(hashName). It returns the key written.
func (c *Converter) ConvertToStorage(ctx context.Context, src, hashName string, store ObjectPutter, hint Category) (string, Category, error) {
	dir, err := os.MkdirTemp(c.tempDir, "pdf-*")
	if err != nil {
		return "", "", err
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, hashName+".pdf")
	cat, err := c.Convert(ctx, src, dst, hint)
	if err != nil {
		return "", cat, err
	}

	f, err := os.Open(dst)
	if err != nil {
		return "", cat, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", cat, err
	}

	key := storage.PDFKey(hashName)
	if _, err := store.Put(ctx, key, f, storage.PutObjectOptions{Size: st.Size(), ContentType: "application/pdf"}); err != nil {
		return "", cat, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	c.log.Info("pdf_stored", slog.String("key", key), slog.String("category", string(cat)), slog.Int64("size", st.Size()))
	return key, cat, nil
}

// Methods reports the configured strategy order for cat.
func (c *Converter) Methods(cat Category) []string {
	return c.chain.Methods(cat)
}

// Close releases long-lived tools such as the browser.
func (c *Converter) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}
