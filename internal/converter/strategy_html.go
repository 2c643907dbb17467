package converter

import (
	"context"
	"fmt"
)

// HTMLStrategy renders an HTML rendition of the source. Documents are wrapped
// in the print shell with their own styles kept; images get a centred page.
type HTMLStrategy struct {
	renderer    Renderer
	maxImageDim int
}

func NewHTMLStrategy(r Renderer, maxImageDim int) *HTMLStrategy {
	return &HTMLStrategy{renderer: r, maxImageDim: maxImageDim}
}

func (s *HTMLStrategy) Name() string { return MethodHTML }

func (s *HTMLStrategy) Available(ctx context.Context) error {
	if s.renderer == nil {
		return fmt.Errorf("%w: no html renderer configured", ErrToolUnavailable)
	}
	return s.renderer.Available(ctx)
}

func (s *HTMLStrategy) Convert(ctx context.Context, job Job) error {
	doc, err := LoadDocument(job.Source, job.Category, s.maxImageDim)
	if err != nil {
		return err
	}

	var html string
	if img := doc.soleImage(); img != nil && job.Category == CategoryImage {
		html = ImagePageHTML(*img, doc.Orientation)
	} else if html, err = ShellHTML(doc); err != nil {
		return err
	}

	data, err := s.renderer.Render(ctx, html, doc.Orientation)
	if err != nil {
		return err
	}
	return writeBytes(job.Dest, data)
}
