package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"docconvert/internal/config"
)

// Package storage holds the object storage abstraction shared by the local
// filesystem, MinIO and S3 drivers. Keys are slash separated and relative.

const (
	// OriginalsPrefix is where uploaded originals live.
	OriginalsPrefix = "files/documents"
	// PDFsPrefix is where generated PDFs live.
	PDFsPrefix = "files/pdfs"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, otherwise -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object storage client used for originals and PDFs.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object is present.
	Exists(ctx context.Context, key string) (bool, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// OriginalKey is the storage key of an uploaded original.
func OriginalKey(hashName, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return path.Join(OriginalsPrefix, hashName+"."+ext)
}

// PDFKey is the storage key of the PDF generated for hashName.
func PDFKey(hashName string) string {
	return path.Join(PDFsPrefix, hashName+".pdf")
}

// cleanKey rejects absolute keys and keys escaping the storage root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return c, nil
}

// New builds the storage driver selected by cfg.Storage.Driver.
func New(cfg *config.AppConfig) (Storage, error) {
	switch cfg.Storage.Driver {
	case "", "local":
		return NewLocal(cfg.Storage.LocalRoot, cfg.Storage.PublicBaseURL)
	case "minio":
		return NewMinIO(cfg.MinIO)
	case "s3":
		return NewS3(context.Background(), cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
