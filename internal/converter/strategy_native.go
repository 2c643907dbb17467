package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// NativeStrategy writes the PDF in process with fpdf. When the writer fails
// and a renderer is configured, a plain HTML rendition is rendered instead.
type NativeStrategy struct {
	renderer    Renderer
	maxImageDim int
	write       func(*Document, io.Writer) error
}

func NewNativeStrategy(r Renderer, maxImageDim int) *NativeStrategy {
	return &NativeStrategy{renderer: r, maxImageDim: maxImageDim, write: WritePDF}
}

func (s *NativeStrategy) Name() string { return MethodNative }

// Available always succeeds, the writer has no external dependency.
func (s *NativeStrategy) Available(context.Context) error { return nil }

func (s *NativeStrategy) Convert(ctx context.Context, job Job) error {
	doc, err := LoadDocument(job.Source, job.Category, s.maxImageDim)
	if err != nil {
		return err
	}
	werr := writeFileAtomic(job.Dest, func(w io.Writer) error { return s.write(doc, w) })
	if werr == nil {
		return nil
	}
	werr = fmt.Errorf("pdf writer: %w", werr)
	if s.renderer == nil {
		return werr
	}
	if err := s.renderer.Available(ctx); err != nil {
		return errors.Join(werr, err)
	}
	data, err := s.renderer.Render(ctx, MinimalHTML(doc), doc.Orientation)
	if err != nil {
		return errors.Join(werr, fmt.Errorf("minimal html render: %w", err))
	}
	return writeBytes(job.Dest, data)
}

func writeBytes(dst string, data []byte) error {
	return writeFileAtomic(dst, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
