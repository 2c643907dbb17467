package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docconvert/internal/converter"
	"docconvert/internal/model"
	"docconvert/internal/repository"
	"docconvert/internal/storage"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("document not found")
	ErrReaderNil    = errors.New("reader is nil")
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
	ErrStorageWrite = errors.New("storage write failed")

	// Re-exported so callers only depend on this package for upload failures.
	ErrUnsupportedFileType = converter.ErrUnsupportedFileType
	ErrConversionFailed    = converter.ErrConversionExhausted
)

const (
	DefaultMaxBytes = 20 << 20
	DefaultPageSize = 20
)

// FileKind selects which of a document's two files to open.
type FileKind string

const (
	FileOriginal FileKind = "original"
	FilePDF      FileKind = "pdf"
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items    []model.Document `json:"data"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
	LastPage int              `json:"last_page"`
}

// Links are URLs under which a document's files can be fetched directly.
type Links struct {
	Original string `json:"original"`
	PDF      string `json:"pdf"`
}

// DocumentFile is an opened document file. The caller closes Body.
type DocumentFile struct {
	Document    *model.Document
	Body        io.ReadCloser
	Name        string
	Size        int64
	ContentType string
}

// PDFConverter converts a local file and stores the PDF under its hash name.
type PDFConverter interface {
	ConvertToStorage(ctx context.Context, src, hashName string, store converter.ObjectPutter, hint converter.Category) (string, converter.Category, error)
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates the file, stores the original and its PDF rendition and
	// saves the record. Nothing written survives a failed upload.
	Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*model.Document, error)

	// List returns one page of documents, newest first. Pages start at 1.
	List(ctx context.Context, page int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Links returns direct URLs for both files of doc.
	Links(ctx context.Context, doc *model.Document) (*Links, error)

	// Open streams the original or the PDF of a document.
	Open(ctx context.Context, id string, kind FileKind) (*DocumentFile, error)

	// Delete removes both stored files and then the record.
	Delete(ctx context.Context, id string) error
}

// Options tune a documentService. Zero values take defaults.
type Options struct {
	MaxBytes      int64
	PageSize      int
	TempDir       string
	PresignExpiry time.Duration
	Logger        *slog.Logger
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	conv  PDFConverter
	opt   Options
	log   *slog.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, conv PDFConverter, opt Options) DocumentService {
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = DefaultMaxBytes
	}
	if opt.PageSize <= 0 {
		opt.PageSize = DefaultPageSize
	}
	if opt.PresignExpiry <= 0 {
		opt.PresignExpiry = 15 * time.Minute
	}
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &documentService{store: store, repo: repo, conv: conv, opt: opt, log: log}
}

// NewHashName returns a random 40 character hex name for stored files.
func NewHashName() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return strings.ReplaceAll(uuid.NewString(), "-", "") + hex.EncodeToString(b[:])
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	name := filepath.Base(strings.ReplaceAll(originalFilename, "\\", "/"))
	ext := converter.NormalizeExt(filepath.Ext(name))
	cat, err := converter.Classify(ext)
	if err != nil {
		return nil, err
	}
	if size > s.opt.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}

	dir, err := os.MkdirTemp(s.opt.TempDir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	defer os.RemoveAll(dir)

	hash := NewHashName()
	src := filepath.Join(dir, hash+"."+ext)
	written, err := s.spool(r, src)
	if err != nil {
		return nil, err
	}

	key := storage.OriginalKey(hash, ext)
	if err := s.putFile(ctx, key, src, written, name); err != nil {
		return nil, s.rollback(ctx, fmt.Errorf("%w: %w", ErrStorageWrite, err), key)
	}

	pdfKey, converted, err := s.conv.ConvertToStorage(ctx, src, hash, s.store, cat)
	if err != nil {
		if errors.Is(err, converter.ErrStoreFailed) {
			err = fmt.Errorf("%w: %w", ErrStorageWrite, err)
		} else {
			err = fmt.Errorf("convert %s: %w", name, err)
		}
		return nil, s.rollback(ctx, err, key, storage.PDFKey(hash))
	}

	doc := &model.Document{
		ID:        uuid.New().String(),
		Name:      name,
		Path:      key,
		PDFPath:   pdfKey,
		FileType:  model.FileType(converted),
		CreatedAt: time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, s.rollback(ctx, fmt.Errorf("db save failed: %w", err), key, pdfKey)
	}
	s.log.Info("document_uploaded",
		slog.String("id", stored.ID),
		slog.String("file_type", string(stored.FileType)),
		slog.Int64("size", written),
	)
	return stored, nil
}

// spool copies r into path, enforcing the size limit on the bytes actually read.
func (s *documentService) spool(r io.Reader, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("spool upload: %w", err)
	}
	defer f.Close()
	n, err := io.Copy(f, io.LimitReader(r, s.opt.MaxBytes+1))
	if err != nil {
		return n, fmt.Errorf("spool upload: %w", err)
	}
	if n > s.opt.MaxBytes {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.opt.MaxBytes)
	}
	return n, f.Close()
}

func (s *documentService) putFile(ctx context.Context, key, path string, size int64, originalName string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.store.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentTypeFor(originalName),
		Metadata:    map[string]string{"original-filename": originalName},
	})
	return err
}

// rollback deletes what an upload already wrote and returns cause, noting
// any object that could not be removed.
func (s *documentService) rollback(ctx context.Context, cause error, keys ...string) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			s.log.Error("upload_rollback_failed", slog.String("key", k), slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w; rollback delete failed: %v", cause, errors.Join(errs...))
	}
	return cause
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, page int) (*DocumentListResult, error) {
	if page < 1 {
		page = 1
	}
	limit := s.opt.PageSize

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	last := (res.Total + limit - 1) / limit
	if last < 1 {
		last = 1
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total, Page: page, PerPage: limit, LastPage: last}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Links(ctx context.Context, doc *model.Document) (*Links, error) {
	orig, err := s.store.PresignGet(ctx, doc.Path, s.opt.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign original: %w", err)
	}
	pdf, err := s.store.PresignGet(ctx, doc.PDFPath, s.opt.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign pdf: %w", err)
	}
	return &Links{Original: orig, PDF: pdf}, nil
}

func (s *documentService) Open(ctx context.Context, id string, kind FileKind) (*DocumentFile, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key, name := doc.Path, doc.Name
	if kind == FilePDF {
		key = doc.PDFPath
		name = strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name)) + ".pdf"
	}
	body, info, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Error("document_file_missing", slog.String("id", doc.ID), slog.String("key", key))
			return nil, fmt.Errorf("%w: %s file is missing", ErrNotFound, kind)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}

	ct := info.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = contentTypeFor(key)
	}
	return &DocumentFile{Document: doc, Body: body, Name: name, Size: info.Size, ContentType: ct}, nil
}

// Delete removes both files, then the record. Both file deletes are always
// attempted; if either fails the row is kept so the delete can be retried.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	var errs []error
	for _, key := range []string{doc.Path, doc.PDFPath} {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.log.Warn("document_delete_incomplete", slog.String("id", id), slog.Any("error", err))
		return fmt.Errorf("delete storage: %w", err)
	}
	// Delete DB row (repository ignores missing row errors as per contract)
	return s.repo.Delete(ctx, id)
}
