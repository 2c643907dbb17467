package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docconvert/internal/config"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(filepath.Join(t.TempDir(), "public"), "/storage/")
	require.NoError(t, err)
	return s
}

func TestLocal_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)
	key := OriginalKey("abc123", ".DOCX")
	assert.Equal(t, "files/documents/abc123.docx", key)

	info, err := s.Put(ctx, key, strings.NewReader("payload"), PutObjectOptions{Size: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, got, err := s.Get(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "payload", string(body))
	assert.Equal(t, int64(7), got.Size)

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocal_GetMissing(t *testing.T) {
	s := newLocal(t)
	_, _, err := s.Get(context.Background(), PDFKey("nope"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	for _, key := range []string{"", "/etc/passwd", "../outside.txt", "files/../../x", `files\x`} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), PutObjectOptions{})
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocal_PutCancelledLeavesNothing(t *testing.T) {
	s := newLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	key := PDFKey("cancelled")
	_, err := s.Put(ctx, key, strings.NewReader("data"), PutObjectOptions{})
	require.Error(t, err)

	entries, _ := os.ReadDir(filepath.Join(s.Root(), PDFsPrefix))
	assert.Empty(t, entries)
}

func TestLocal_PresignGet(t *testing.T) {
	s := newLocal(t)
	u, err := s.PresignGet(context.Background(), PDFKey("abc"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "/storage/files/pdfs/abc.pdf", u)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(&config.AppConfig{Storage: config.StorageConfig{Driver: "ftp"}})
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestNew_Local(t *testing.T) {
	st, err := New(&config.AppConfig{Storage: config.StorageConfig{Driver: "local", LocalRoot: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, st)
}
