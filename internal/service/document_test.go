package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docconvert/internal/converter"
	convMocks "docconvert/internal/converter/mocks"
	"docconvert/internal/model"
	"docconvert/internal/repository"
	repoMocks "docconvert/internal/repository/mocks"
	"docconvert/internal/storage"
	storeMocks "docconvert/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func isOriginalKey(ext string) any {
	return mock.MatchedBy(func(key string) bool {
		name := strings.TrimPrefix(key, storage.OriginalsPrefix+"/")
		return name != key && strings.HasSuffix(name, "."+ext) && len(name) == 40+1+len(ext)
	})
}

// rollbackCtx matches the detached context rollback deletes run under.
var rollbackCtx = mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()
	pdfBody := "%PDF-1.4 scanned"

	tests := []struct {
		name             string
		originalFilename string
		body             string
		size             int64
		maxBytes         int64
		setupMocks       func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository, mConv *convMocks.MockConverter)
		wantErr          error
		wantErrMsg       string
	}{
		{
			name:             "happy path",
			originalFilename: "scan.pdf",
			body:             pdfBody,
			size:             int64(len(pdfBody)),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository, mConv *convMocks.MockConverter) {
				mStore.On("Put", ctx, isOriginalKey("pdf"), mock.Anything, storage.PutObjectOptions{
					Size:        int64(len(pdfBody)),
					ContentType: "application/pdf",
					Metadata:    map[string]string{"original-filename": "scan.pdf"},
				}).Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key}
				}, nil)
				mConv.On("ConvertToStorage", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything, converter.CategoryPDF).
					Return("files/pdfs/generated.pdf", converter.CategoryPDF, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.Name == "scan.pdf" && doc.FileType == model.FileTypePDF &&
						doc.PDFPath == "files/pdfs/generated.pdf" && strings.HasPrefix(doc.Path, "files/documents/")
				})).Return(&model.Document{ID: "gen-id"}, nil)
			},
		},
		{
			name:             "validation error - nil reader",
			originalFilename: "scan.pdf",
			setupMocks:       func(*storeMocks.MockStorage, *repoMocks.MockDocumentRepository, *convMocks.MockConverter) {},
			wantErr:          ErrReaderNil,
		},
		{
			name:             "validation error - unsupported extension",
			originalFilename: "notes.txt",
			body:             "hello",
			setupMocks:       func(*storeMocks.MockStorage, *repoMocks.MockDocumentRepository, *convMocks.MockConverter) {},
			wantErr:          ErrUnsupportedFileType,
		},
		{
			name:             "validation error - declared size too large",
			originalFilename: "photo.png",
			body:             "x",
			size:             DefaultMaxBytes + 1,
			setupMocks:       func(*storeMocks.MockStorage, *repoMocks.MockDocumentRepository, *convMocks.MockConverter) {},
			wantErr:          ErrFileTooLarge,
		},
		{
			name:             "validation error - body larger than limit",
			originalFilename: "photo.png",
			body:             "hello",
			size:             -1,
			maxBytes:         4,
			setupMocks:       func(*storeMocks.MockStorage, *repoMocks.MockDocumentRepository, *convMocks.MockConverter) {},
			wantErr:          ErrFileTooLarge,
		},
		{
			name:             "storage error",
			originalFilename: "report.docx",
			body:             "docx",
			size:             4,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository, mConv *convMocks.MockConverter) {
				mStore.On("Put", ctx, isOriginalKey("docx"), mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				mStore.On("Delete", rollbackCtx, isOriginalKey("docx")).Return(nil)
			},
			wantErr: ErrStorageWrite,
		},
		{
			name:             "conversion exhausted rolls back both keys",
			originalFilename: "report.docx",
			body:             "docx",
			size:             4,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository, mConv *convMocks.MockConverter) {
				mStore.On("Put", ctx, isOriginalKey("docx"), mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				mConv.On("ConvertToStorage", ctx, mock.Anything, mock.Anything, mock.Anything, converter.CategoryWord).
					Return("", converter.CategoryWord, &converter.ExhaustedError{Category: converter.CategoryWord})
				mStore.On("Delete", rollbackCtx, isOriginalKey("docx")).Return(nil).Once()
				mStore.On("Delete", rollbackCtx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, storage.PDFsPrefix+"/")
				})).Return(nil).Once()
			},
			wantErr: ErrConversionFailed,
		},
		{
			name:             "storing the pdf fails",
			originalFilename: "sheet.xlsx",
			body:             "xlsx",
			size:             4,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository, mConv *convMocks.MockConverter) {
				mStore.On("Put", ctx, isOriginalKey("xlsx"), mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				mConv.On("ConvertToStorage", ctx, mock.Anything, mock.Anything, mock.Anything, converter.CategoryExcel).
					Return("", converter.CategoryExcel, converter.ErrStoreFailed)
				mStore.On("Delete", rollbackCtx, mock.Anything).Return(nil).Twice()
			},
			wantErr: ErrStorageWrite,
		},
		{
			name:             "repository error with successful rollback",
			originalFilename: "photo.png",
			body:             "png",
			size:             3,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository, mConv *convMocks.MockConverter) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				mConv.On("ConvertToStorage", ctx, mock.Anything, mock.Anything, mock.Anything, converter.CategoryImage).
					Return("files/pdfs/p.pdf", converter.CategoryImage, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", rollbackCtx, isOriginalKey("png")).Return(nil).Once()
				mStore.On("Delete", rollbackCtx, "files/pdfs/p.pdf").Return(nil).Once()
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:             "repository error with failed rollback",
			originalFilename: "photo.png",
			body:             "png",
			size:             3,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository, mConv *convMocks.MockConverter) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
				mConv.On("ConvertToStorage", ctx, mock.Anything, mock.Anything, mock.Anything, converter.CategoryImage).
					Return("files/pdfs/p.pdf", converter.CategoryImage, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", rollbackCtx, mock.Anything).Return(errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			mConv := new(convMocks.MockConverter)
			svc := NewDocumentService(mStore, mRepo, mConv, Options{MaxBytes: tt.maxBytes, TempDir: t.TempDir()})

			tt.setupMocks(mStore, mRepo, mConv)

			var r io.Reader
			if tt.body != "" {
				r = strings.NewReader(tt.body)
			}
			doc, err := svc.Upload(ctx, r, tt.originalFilename, tt.size)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
			mConv.AssertExpectations(t)
		})
	}
}

func TestDocumentService_UploadRollbackSurvivesCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	mConv := new(convMocks.MockConverter)
	svc := NewDocumentService(mStore, mRepo, mConv, Options{TempDir: t.TempDir()})

	mStore.On("Put", ctx, isOriginalKey("png"), mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
	// The client goes away while the PDF is being produced.
	mConv.On("ConvertToStorage", ctx, mock.Anything, mock.Anything, mock.Anything, converter.CategoryImage).
		Run(func(mock.Arguments) { cancel() }).
		Return("", converter.CategoryImage, context.Canceled)
	mStore.On("Delete", rollbackCtx, isOriginalKey("png")).Return(nil).Once()
	mStore.On("Delete", rollbackCtx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, storage.PDFsPrefix+"/")
	})).Return(nil).Once()

	doc, err := svc.Upload(ctx, strings.NewReader("png"), "photo.png", 3)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, doc)
	mStore.AssertExpectations(t)
	mConv.AssertExpectations(t)
	mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Upload and delete against the real converter and local storage.
func TestDocumentService_UploadDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := storage.NewLocal(root, "/storage")
	require.NoError(t, err)
	conv := converter.New(converter.NewChain(converter.Plan{
		converter.CategoryImage: {converter.NewNativeStrategy(nil, converter.DefaultMaxImageDim)},
	}, t.TempDir(), nil, nil), t.TempDir(), nil)

	var saved *model.Document
	mRepo := new(repoMocks.MockDocumentRepository)
	mRepo.On("Create", ctx, mock.Anything).Return(func(_ context.Context, doc *model.Document) *model.Document {
		saved = doc
		return doc
	}, nil)
	svc := NewDocumentService(store, mRepo, conv, Options{TempDir: t.TempDir()})

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4000, 3000))))
	doc, err := svc.Upload(ctx, bytes.NewReader(img.Bytes()), "photo.png", int64(img.Len()))
	require.NoError(t, err)
	require.Same(t, saved, doc)
	assert.Equal(t, model.FileTypeImage, doc.FileType)

	for _, key := range []string{doc.Path, doc.PDFPath} {
		ok, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}
	stored, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(doc.Path)))
	require.NoError(t, err)
	assert.Equal(t, img.Bytes(), stored)

	mRepo.On("FindByID", ctx, doc.ID).Return(doc, nil)
	mRepo.On("Delete", ctx, doc.ID).Return(nil)
	require.NoError(t, svc.Delete(ctx, doc.ID))

	for _, key := range []string{doc.Path, doc.PDFPath} {
		ok, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	mRepo.AssertExpectations(t)
}

func TestDocumentService_RejectedUploadWritesNothing(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewLocal(root, "/storage")
	require.NoError(t, err)
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := NewDocumentService(store, mRepo, new(convMocks.MockConverter), Options{TempDir: t.TempDir()})

	_, err = svc.Upload(context.Background(), strings.NewReader("hi"), "notes.txt", 2)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
	mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNewHashName(t *testing.T) {
	a, b := NewHashName(), NewHashName()
	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9a-f]{40}$`, a)
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		page       int
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		checkRes   func(t *testing.T, res *DocumentListResult)
	}{
		{
			name: "happy path",
			page: 1,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 20, Offset: 0}).
					Return(&repository.PageResult[model.Document]{
						Items: []model.Document{{ID: "1"}, {ID: "2"}},
						Total: 2,
					}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Equal(t, 2, len(res.Items))
				assert.Equal(t, 2, res.Total)
				assert.Equal(t, 1, res.LastPage)
			},
		},
		{
			name: "third page",
			page: 3,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 20, Offset: 40}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{{ID: "41"}}, Total: 41}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Equal(t, 3, res.Page)
				assert.Equal(t, 20, res.PerPage)
				assert.Equal(t, 3, res.LastPage)
			},
		},
		{
			name: "pagination boundary - page below one uses first page",
			page: -2,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, repository.PageQuery{Limit: 20, Offset: 0}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil)
			},
			checkRes: func(t *testing.T, res *DocumentListResult) {
				assert.Equal(t, 1, res.Page)
				assert.Equal(t, 1, res.LastPage)
			},
		},
		{
			name: "repository error",
			page: 1,
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(nil, mRepo, nil, Options{})

			tt.setupMocks(mRepo)

			res, err := svc.List(ctx, tt.page)

			if tt.wantErr != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.checkRes != nil {
					tt.checkRes(t, res)
				}
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(&model.Document{ID: "valid-id"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   "error-id",
			setupMocks: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "error-id").Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(nil, mRepo, nil, Options{})

			tt.setupMocks(mRepo)

			doc, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, doc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
				assert.Equal(t, tt.id, doc.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Open(t *testing.T) {
	ctx := context.Background()
	doc := &model.Document{ID: "id-1", Name: "Report.final.docx", Path: "files/documents/h.docx", PDFPath: "files/pdfs/h.pdf"}

	t.Run("pdf", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "id-1").Return(doc, nil)
		mStore.On("Get", ctx, "files/pdfs/h.pdf").Return(io.NopCloser(strings.NewReader("%PDF")), storage.ObjectInfo{Size: 4}, nil)
		svc := NewDocumentService(mStore, mRepo, nil, Options{})

		f, err := svc.Open(ctx, "id-1", FilePDF)
		require.NoError(t, err)
		defer f.Body.Close()
		assert.Equal(t, "Report.final.pdf", f.Name)
		assert.Equal(t, "application/pdf", f.ContentType)
		assert.Equal(t, int64(4), f.Size)
	})

	t.Run("original", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "id-1").Return(doc, nil)
		mStore.On("Get", ctx, "files/documents/h.docx").
			Return(io.NopCloser(strings.NewReader("docx")), storage.ObjectInfo{Size: 4, ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, nil)
		svc := NewDocumentService(mStore, mRepo, nil, Options{})

		f, err := svc.Open(ctx, "id-1", FileOriginal)
		require.NoError(t, err)
		assert.Equal(t, "Report.final.docx", f.Name)
		assert.Contains(t, f.ContentType, "wordprocessingml")
	})

	t.Run("file missing", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", ctx, "id-1").Return(doc, nil)
		mStore.On("Get", ctx, "files/pdfs/h.pdf").Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)
		svc := NewDocumentService(mStore, mRepo, nil, Options{})

		_, err := svc.Open(ctx, "id-1", FilePDF)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_Links(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mStore.On("PresignGet", ctx, "files/documents/h.png", 5*time.Minute).Return("https://cdn/h.png", nil)
	mStore.On("PresignGet", ctx, "files/pdfs/h.pdf", 5*time.Minute).Return("https://cdn/h.pdf", nil)
	svc := NewDocumentService(mStore, nil, nil, Options{PresignExpiry: 5 * time.Minute})

	links, err := svc.Links(ctx, &model.Document{Path: "files/documents/h.png", PDFPath: "files/pdfs/h.pdf"})
	require.NoError(t, err)
	assert.Equal(t, &Links{Original: "https://cdn/h.png", PDF: "https://cdn/h.pdf"}, links)
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	stored := func(id string) *model.Document {
		return &model.Document{ID: id, Path: "files/documents/h.docx", PDFPath: "files/pdfs/h.pdf"}
	}

	tests := []struct {
		name       string
		id         string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "valid-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "valid-id").Return(stored("valid-id"), nil)
				mStore.On("Delete", ctx, "files/documents/h.docx").Return(nil)
				mStore.On("Delete", ctx, "files/pdfs/h.pdf").Return(nil)
				mRepo.On("Delete", ctx, "valid-id").Return(nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "missing-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "missing-id").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "original delete fails, pdf still attempted, row kept",
			id:   "storage-fail-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "storage-fail-id").Return(stored("storage-fail-id"), nil)
				mStore.On("Delete", ctx, "files/documents/h.docx").Return(errors.New("storage fail"))
				mStore.On("Delete", ctx, "files/pdfs/h.pdf").Return(nil)
			},
			wantErr: errors.New("delete storage: files/documents/h.docx: storage fail"),
		},
		{
			name: "repository delete error",
			id:   "repo-fail-id",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", ctx, "repo-fail-id").Return(stored("repo-fail-id"), nil)
				mStore.On("Delete", ctx, mock.Anything).Return(nil).Twice()
				mRepo.On("Delete", ctx, "repo-fail-id").Return(errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := NewDocumentService(mStore, mRepo, nil, Options{})

			tt.setupMocks(mStore, mRepo)

			err := svc.Delete(ctx, tt.id)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrIDRequired) || errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				assert.NoError(t, err)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}
