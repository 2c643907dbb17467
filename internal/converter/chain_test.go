package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var minimalPDF = []byte("%PDF-1.4\n1 0 obj << /Type /Page >> endobj\n%%EOF\n")

type fakeStrategy struct {
	name        string
	unavailable error
	err         error
	write       []byte
	calls       int
	tempDir     string
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Available(context.Context) error { return f.unavailable }

func (f *fakeStrategy) Convert(_ context.Context, job Job) error {
	f.calls++
	f.tempDir = job.TempDir
	if f.write != nil {
		if err := os.WriteFile(job.Dest, f.write, 0o644); err != nil {
			return err
		}
	}
	return f.err
}

func newTestChain(t *testing.T, plan Plan) (*Chain, *Metrics) {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return NewChain(plan, t.TempDir(), nil, m), m
}

func TestChain_FirstSuccessStops(t *testing.T) {
	first := &fakeStrategy{name: "first", err: errors.New("boom"), write: []byte("partial")}
	second := &fakeStrategy{name: "second", write: minimalPDF}
	third := &fakeStrategy{name: "third", write: minimalPDF}
	chain, m := newTestChain(t, Plan{CategoryWord: {first, second, third}})
	dst := filepath.Join(t.TempDir(), "out.pdf")

	err := chain.Run(context.Background(), "in.docx", dst, CategoryWord)
	require.NoError(t, err)

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, minimalPDF, got)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("word", "first", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("word", "second", "success")))
	assert.NoDirExists(t, first.tempDir)
	assert.NoDirExists(t, second.tempDir)
}

func TestChain_SkipsUnavailable(t *testing.T) {
	missing := &fakeStrategy{name: "image", unavailable: ErrToolUnavailable}
	ok := &fakeStrategy{name: "soffice", write: minimalPDF}
	chain, m := newTestChain(t, Plan{CategoryWord: {missing, ok}})

	err := chain.Run(context.Background(), "in.docx", filepath.Join(t.TempDir(), "out.pdf"), CategoryWord)
	require.NoError(t, err)
	assert.Equal(t, 0, missing.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("word", "image", "unavailable")))
}

func TestChain_RejectsNonPDFOutput(t *testing.T) {
	liar := &fakeStrategy{name: "liar", write: []byte("<html>not a pdf</html>")}
	ok := &fakeStrategy{name: "ok", write: minimalPDF}
	chain, _ := newTestChain(t, Plan{CategoryExcel: {liar, ok}})
	dst := filepath.Join(t.TempDir(), "out.pdf")

	require.NoError(t, chain.Run(context.Background(), "in.xlsx", dst, CategoryExcel))
	assert.Equal(t, 1, ok.calls)
}

func TestChain_Exhausted(t *testing.T) {
	a := &fakeStrategy{name: "image", unavailable: errors.New("no chromium")}
	b := &fakeStrategy{name: "soffice", err: errors.New("exit status 1"), write: []byte("%PDF-half")}
	c := &fakeStrategy{name: "native", err: ErrNoReader}
	chain, _ := newTestChain(t, Plan{CategoryWord: {a, b, c}})
	dst := filepath.Join(t.TempDir(), "out.pdf")

	err := chain.Run(context.Background(), "in.doc", dst, CategoryWord)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversionExhausted)
	assert.ErrorIs(t, err, ErrToolUnavailable)
	assert.ErrorIs(t, err, ErrNoReader)

	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, CategoryWord, exhausted.Category)
	require.Len(t, exhausted.Attempts, 3)
	assert.Equal(t, []string{"image", "soffice", "native"}, []string{
		exhausted.Attempts[0].Method, exhausted.Attempts[1].Method, exhausted.Attempts[2].Method,
	})

	assert.NoFileExists(t, dst)
	assert.NoDirExists(t, b.tempDir)
}

func TestChain_NoMethods(t *testing.T) {
	chain, _ := newTestChain(t, Plan{})

	err := chain.Run(context.Background(), "in.png", filepath.Join(t.TempDir(), "out.pdf"), CategoryImage)
	assert.ErrorIs(t, err, ErrConversionExhausted)
	assert.Contains(t, err.Error(), "no methods configured")
}

func TestChain_CancelledContext(t *testing.T) {
	s := &fakeStrategy{name: "native", write: minimalPDF}
	chain, _ := newTestChain(t, Plan{CategoryWord: {s}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := chain.Run(ctx, "in.docx", filepath.Join(t.TempDir(), "out.pdf"), CategoryWord)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.calls)
}

func TestBuildPlan(t *testing.T) {
	strategies := map[string]Strategy{
		"native": &fakeStrategy{name: "native"},
		"html":   &fakeStrategy{name: "html"},
	}

	plan, err := BuildPlan(map[Category][]string{CategoryImage: {"html", "native"}}, strategies)
	require.NoError(t, err)
	chain := NewChain(plan, "", nil, nil)
	assert.Equal(t, []string{"html", "native"}, chain.Methods(CategoryImage))

	_, err = BuildPlan(map[Category][]string{CategoryWord: {"pandoc"}}, strategies)
	assert.ErrorContains(t, err, `unknown conversion method "pandoc"`)
}
