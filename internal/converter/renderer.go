package converter

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"math"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	// MinPDFBytes is the smallest output accepted from the HTML renderer.
	MinPDFBytes = 1024
	// RenderDPI is the resolution page captures are taken at.
	RenderDPI = 150

	cssDPI       = 96.0
	a4WidthInch  = 8.27
	a4HeightInch = 11.69
)

// Budget bounds the resources one render may use. Zero fields are unbounded.
type Budget struct {
	MaxHTMLBytes   int
	MaxImagePixels int
}

// Check fails with ErrBudgetExceeded when html is too large or embeds a
// data: URI image with more than MaxImagePixels pixels.
func (b Budget) Check(html string) error {
	if b.MaxHTMLBytes > 0 && len(html) > b.MaxHTMLBytes {
		return fmt.Errorf("%w: html is %d bytes, limit %d", ErrBudgetExceeded, len(html), b.MaxHTMLBytes)
	}
	if b.MaxImagePixels <= 0 || !strings.Contains(html, "data:image/") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	var over error
	doc.Find(`img[src^="data:image/"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		w, h, ok := dataURISize(sel.AttrOr("src", ""))
		if ok && w*h > b.MaxImagePixels {
			over = fmt.Errorf("%w: image is %dx%d, limit %d pixels", ErrBudgetExceeded, w, h, b.MaxImagePixels)
			return false
		}
		return true
	})
	return over
}

// dataURISize reads the dimensions of a base64 data: URI image from its header.
func dataURISize(uri string) (int, int, bool) {
	meta, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return 0, 0, false
	}
	cfg, _, err := image.DecodeConfig(base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload)))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// Renderer turns an HTML document into PDF bytes on an A4 page.
type Renderer interface {
	Available(ctx context.Context) error
	Render(ctx context.Context, html string, o Orientation) ([]byte, error)
}

// PageCapturer screenshots a rendered HTML document page by page.
type PageCapturer interface {
	Renderer
	CapturePages(ctx context.Context, html string, o Orientation, pages int, dir string) ([]string, error)
}

// a4CSSSize is the page box in CSS pixels.
func a4CSSSize(o Orientation) (float64, float64) {
	w, h := a4WidthInch*cssDPI, a4HeightInch*cssDPI
	if o == Landscape {
		return h, w
	}
	return w, h
}

func ptr[T any](v T) *T { return &v }

// validateRender rejects empty or truncated renderer output.
func validateRender(data []byte) error {
	if len(data) < MinPDFBytes || !looksLikePDF(data) {
		return fmt.Errorf("%w: %d bytes", ErrCorruptRender, len(data))
	}
	return nil
}

// BrowserRenderer renders through headless Chromium. The browser is launched
// on first use and shared by later renders until Close.
type BrowserRenderer struct {
	bin     string
	timeout time.Duration
	budget  Budget
	tempDir string

	lookPath func(string) (string, error)

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowserRenderer configures a renderer. An empty bin means the browser is
// looked up in the usual install locations.
func NewBrowserRenderer(bin string, timeout time.Duration, budget Budget, tempDir string) *BrowserRenderer {
	return &BrowserRenderer{
		bin:      bin,
		timeout:  timeout,
		budget:   budget,
		tempDir:  tempDir,
		lookPath: exec.LookPath,
	}
}

// Available probes for a browser binary without starting it.
func (r *BrowserRenderer) Available(_ context.Context) error {
	if r.bin != "" {
		if _, err := r.lookPath(r.bin); err != nil {
			return fmt.Errorf("%w: browser %s: %v", ErrToolUnavailable, r.bin, err)
		}
		return nil
	}
	if _, ok := launcher.LookPath(); !ok {
		return fmt.Errorf("%w: no chromium or chrome binary found", ErrToolUnavailable)
	}
	return nil
}

func (r *BrowserRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true).NoSandbox(true).Leakless(false)
	if r.bin != "" {
		l = l.Bin(r.bin)
	} else if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	r.launcher, r.browser = l, b
	return b, nil
}

// reset drops a browser that stopped answering so the next call relaunches it.
func (r *BrowserRenderer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *BrowserRenderer) closeLocked() {
	if r.browser != nil {
		_ = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
}

// Close shuts the browser down.
func (r *BrowserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
	return nil
}

// open loads html into a fresh tab with print media and scripting disabled.
// The returned cleanup closes the tab and removes the scratch HTML file.
func (r *BrowserRenderer) open(ctx context.Context, html string) (*rod.Page, func(), error) {
	if err := r.budget.Check(html); err != nil {
		return nil, nil, err
	}

	dir, err := os.MkdirTemp(r.tempDir, "render-*")
	if err != nil {
		return nil, nil, err
	}
	file := filepath.Join(dir, "page.html")
	if err := os.WriteFile(file, []byte(html), 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, nil, err
	}

	b, err := r.connect()
	if err != nil {
		os.RemoveAll(dir)
		return nil, nil, err
	}
	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		os.RemoveAll(dir)
		r.reset()
		return nil, nil, fmt.Errorf("open tab: %w", err)
	}
	cleanup := func() {
		_ = page.Close()
		os.RemoveAll(dir)
	}

	if err := (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(page); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("disable scripts: %w", err)
	}
	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("emulate print media: %w", err)
	}

	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := page.Navigate((&url.URL{Scheme: "file", Path: file}).String()); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load html: %w", err)
	}
	wait()
	return page, cleanup, nil
}

func (r *BrowserRenderer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

// Render prints html to an A4 PDF in orientation o.
func (r *BrowserRenderer) Render(ctx context.Context, html string, o Orientation) ([]byte, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	page, cleanup, err := r.open(ctx, html)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	stream, err := page.PDF(&proto.PagePrintToPDF{
		Landscape:         o == Landscape,
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        ptr(a4WidthInch),
		PaperHeight:       ptr(a4HeightInch),
	})
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	if err := validateRender(data); err != nil {
		return nil, err
	}
	return data, nil
}

// CapturePages screenshots pages A4 sized slices of html at RenderDPI and
// writes them as PNG files into dir, in page order.
func (r *BrowserRenderer) CapturePages(ctx context.Context, html string, o Orientation, pages int, dir string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	page, cleanup, err := r.open(ctx, html)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	w, h := a4CSSSize(o)
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             int(math.Round(w)),
		Height:            int(math.Round(h)),
		DeviceScaleFactor: RenderDPI / cssDPI,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	out := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
			Format:                proto.PageCaptureScreenshotFormatPng,
			CaptureBeyondViewport: true,
			Clip: &proto.PageViewport{
				X:      0,
				Y:      float64(i) * h,
				Width:  w,
				Height: h,
				Scale:  1,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("capture page %d: %w", i+1, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", i+1))
		if err := os.WriteFile(path, shot, 0o600); err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, nil
}
