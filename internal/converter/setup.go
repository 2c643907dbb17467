package converter

import (
	"fmt"
	"log/slog"

	"docconvert/internal/config"
)

// BuildPlan resolves method names into strategies for each category.
func BuildPlan(orders map[Category][]string, strategies map[string]Strategy) (Plan, error) {
	plan := make(Plan, len(orders))
	for cat, names := range orders {
		for _, name := range names {
			s, ok := strategies[name]
			if !ok {
				return nil, fmt.Errorf("unknown conversion method %q for %s", name, cat)
			}
			plan[cat] = append(plan[cat], s)
		}
	}
	return plan, nil
}

// NewFromConfig wires the strategies and the shared browser renderer.
func NewFromConfig(cfg config.ConverterConfig, log *slog.Logger, m *Metrics) (*Converter, error) {
	browser := NewBrowserRenderer(cfg.BrowserBin, cfg.RenderTimeout, Budget{MaxHTMLBytes: cfg.MaxHTMLBytes, MaxImagePixels: cfg.MaxImagePixels}, cfg.TempDir)

	strategies := map[string]Strategy{
		MethodImage:   NewCaptureStrategy(browser, cfg.MaxImageDim),
		MethodSoffice: NewSofficeStrategy(cfg.SofficeBin, cfg.SofficeTimeout),
		MethodNative:  NewNativeStrategy(browser, cfg.MaxImageDim),
		MethodHTML:    NewHTMLStrategy(browser, cfg.MaxImageDim),
	}
	plan, err := BuildPlan(map[Category][]string{
		CategoryWord:  cfg.WordOrder,
		CategoryExcel: cfg.ExcelOrder,
		CategoryImage: cfg.ImageOrder,
	}, strategies)
	if err != nil {
		return nil, err
	}

	c := New(NewChain(plan, cfg.TempDir, log, m), cfg.TempDir, log)
	c.closers = append(c.closers, browser)
	return c, nil
}
