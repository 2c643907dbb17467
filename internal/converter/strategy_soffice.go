package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultSofficeTimeout bounds one office suite run.
const DefaultSofficeTimeout = 2 * time.Minute

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// SofficeStrategy shells out to a headless office suite.
type SofficeStrategy struct {
	bin     string
	timeout time.Duration
}

func NewSofficeStrategy(bin string, timeout time.Duration) *SofficeStrategy {
	if bin == "" {
		bin = "soffice"
	}
	if timeout <= 0 {
		timeout = DefaultSofficeTimeout
	}
	return &SofficeStrategy{bin: bin, timeout: timeout}
}

func (s *SofficeStrategy) Name() string { return MethodSoffice }

func (s *SofficeStrategy) Available(context.Context) error {
	if _, err := lookPath(s.bin); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrToolUnavailable, s.bin, err)
	}
	return nil
}

func (s *SofficeStrategy) Convert(ctx context.Context, job Job) error {
	bin, err := lookPath(s.bin)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrToolUnavailable, s.bin, err)
	}

	src := job.Source
	if job.Category == CategoryExcel && isWorkbook(src) {
		in := filepath.Join(job.TempDir, "in")
		if err := os.Mkdir(in, 0o700); err != nil {
			return err
		}
		// Page setup is best effort; an unreadable workbook still goes to soffice as-is.
		if prepared, perr := PrepareWorkbook(src, in); perr == nil {
			src = prepared
		}
	}

	outDir := filepath.Join(job.TempDir, "out")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", outDir, src)
	// soffice keeps its user profile under HOME.
	cmd.Env = append(os.Environ(), "HOME="+job.TempDir)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = 5 * time.Second

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("soffice timed out after %s", s.timeout)
	}
	if err != nil {
		return fmt.Errorf("soffice: %w: %s", err, tail(out, 512))
	}

	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("soffice exited cleanly but wrote no %s: %s", filepath.Base(produced), tail(out, 512))
	}
	return moveFile(produced, job.Dest)
}

func isWorkbook(path string) bool {
	switch NormalizeExt(filepath.Ext(path)) {
	case "xlsx", "xlsm":
		return true
	}
	return false
}

func tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFileAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}
