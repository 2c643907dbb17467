package converter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CaptureStrategy renders the source as HTML in a headless browser,
// screenshots every page and assembles the shots into an image-only PDF.
type CaptureStrategy struct {
	capturer    PageCapturer
	maxImageDim int
}

func NewCaptureStrategy(c PageCapturer, maxImageDim int) *CaptureStrategy {
	return &CaptureStrategy{capturer: c, maxImageDim: maxImageDim}
}

func (s *CaptureStrategy) Name() string { return MethodImage }

func (s *CaptureStrategy) Available(ctx context.Context) error {
	if s.capturer == nil {
		return fmt.Errorf("%w: no page capturer configured", ErrToolUnavailable)
	}
	return s.capturer.Available(ctx)
}

func (s *CaptureStrategy) Convert(ctx context.Context, job Job) error {
	doc, err := LoadDocument(job.Source, job.Category, s.maxImageDim)
	if err != nil {
		return err
	}
	html, err := ShellHTML(doc)
	if err != nil {
		return err
	}
	html = CaptureHTML(html)

	// The probe render only tells us how many pages to capture.
	probe, err := s.capturer.Render(ctx, html, doc.Orientation)
	if err != nil {
		return fmt.Errorf("probe render: %w", err)
	}
	if err := os.WriteFile(filepath.Join(job.TempDir, "probe.pdf"), probe, 0o600); err != nil {
		return err
	}
	pages := CountPages(probe)

	shots, err := s.capturer.CapturePages(ctx, html, doc.Orientation, pages, job.TempDir)
	if err != nil {
		return err
	}
	return writeFileAtomic(job.Dest, func(w io.Writer) error {
		return AssemblePages(shots, doc.Orientation, w)
	})
}
