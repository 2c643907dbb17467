package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Method names accepted in the per-category order lists.
const (
	MethodImage   = "image"
	MethodSoffice = "soffice"
	MethodNative  = "native"
	MethodHTML    = "html"
)

// Job is one conversion attempt. TempDir is private to the attempt and
// removed once the strategy returns.
type Job struct {
	Source   string
	Dest     string
	Category Category
	TempDir  string
}

// Strategy is one way of producing a PDF. Available is a cheap probe that
// must not start the underlying tool.
type Strategy interface {
	Name() string
	Available(ctx context.Context) error
	Convert(ctx context.Context, job Job) error
}

// Plan maps each convertible category to its strategies in priority order.
type Plan map[Category][]Strategy

// Chain runs a category's strategies in order until one produces a PDF.
type Chain struct {
	plan    Plan
	tempDir string
	log     *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewChain builds a chain. A nil logger discards output; nil metrics are not recorded.
func NewChain(plan Plan, tempDir string, log *slog.Logger, m *Metrics) *Chain {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Chain{
		plan:    plan,
		tempDir: tempDir,
		log:     log,
		metrics: m,
		tracer:  otel.Tracer("docconvert/converter"),
	}
}

// Methods lists the strategy names configured for cat.
func (c *Chain) Methods(cat Category) []string {
	names := make([]string, 0, len(c.plan[cat]))
	for _, s := range c.plan[cat] {
		names = append(names, s.Name())
	}
	return names
}

// Run converts src into dst. Only the outcome of the whole chain is returned:
// earlier failures are logged and folded into the ExhaustedError.
func (c *Chain) Run(ctx context.Context, src, dst string, cat Category) error {
	exhausted := &ExhaustedError{Category: cat}
	for _, s := range c.plan[cat] {
		if err := ctx.Err(); err != nil {
			exhausted.Attempts = append(exhausted.Attempts, &MethodError{Method: s.Name(), Category: cat, Err: err})
			break
		}
		err := c.attempt(ctx, s, src, dst, cat)
		if err == nil {
			return nil
		}
		exhausted.Attempts = append(exhausted.Attempts, &MethodError{Method: s.Name(), Category: cat, Err: err})
	}
	_ = os.Remove(dst)
	c.log.Error("conversion_exhausted",
		slog.String("category", string(cat)),
		slog.String("source", src),
		slog.Any("error", exhausted),
	)
	return exhausted
}

func (c *Chain) attempt(ctx context.Context, s Strategy, src, dst string, cat Category) (err error) {
	ctx, span := c.tracer.Start(ctx, "convert."+s.Name(), trace.WithAttributes(
		attribute.String("converter.category", string(cat)),
		attribute.String("converter.method", s.Name()),
	))
	start := time.Now()
	outcome := "success"
	defer func() {
		elapsed := time.Since(start)
		c.metrics.observe(cat, s.Name(), outcome, elapsed)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.log.Warn("conversion_method_failed",
				slog.String("category", string(cat)),
				slog.String("method", s.Name()),
				slog.String("outcome", outcome),
				slog.Any("error", err),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
			)
		} else {
			c.log.Info("conversion_method_succeeded",
				slog.String("category", string(cat)),
				slog.String("method", s.Name()),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
			)
		}
		span.End()
	}()

	if err = s.Available(ctx); err != nil {
		outcome = "unavailable"
		if !errors.Is(err, ErrToolUnavailable) {
			err = fmt.Errorf("%w: %v", ErrToolUnavailable, err)
		}
		return err
	}

	tmp, err := os.MkdirTemp(c.tempDir, "convert-"+s.Name()+"-*")
	if err != nil {
		outcome = "failure"
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	err = s.Convert(ctx, Job{Source: src, Dest: dst, Category: cat, TempDir: tmp})
	if err == nil {
		err = checkPDF(dst)
	}
	if err != nil {
		outcome = "failure"
		_ = os.Remove(dst)
	}
	return err
}

// checkPDF verifies that path exists and starts with a PDF header.
func checkPDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("no output written: %w", err)
	}
	defer f.Close()
	head := make([]byte, 8)
	n, _ := io.ReadFull(f, head)
	if !looksLikePDF(head[:n]) {
		return fmt.Errorf("%w: output is not a pdf", ErrCorruptRender)
	}
	return nil
}

// writeFileAtomic writes data to dst through a temp file in dst's directory.
func writeFileAtomic(dst string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".pdf-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, dst); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
