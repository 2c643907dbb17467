package handler

import (
	"mime"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docconvert/internal/model"
	"docconvert/internal/service"
)

// documentResponse is the body of GET /documents/:id.
type documentResponse struct {
	Data  *model.Document `json:"data"`
	Links *service.Links  `json:"links,omitempty"`
}

func validID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	_, err := uuid.Parse(id)
	return id, err == nil
}

// ListDocuments returns documents newest first, one page at a time.
//
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        page  query     int  false  "Page number, starting at 1"
// @Success      200   {object}  service.DocumentListResult
// @Failure      400   {object}  errorPayload
// @Router       /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil || page < 1 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGE", "invalid page")
		}

		res, err := svc.List(c.UserContext(), page)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument stores a file and its PDF rendition.
//
// @Summary      Upload a document
// @Description  Accepts pdf, doc, docx, rtf, odt, xls, xlsx, csv, ods, jpg, jpeg, png, gif, bmp and webp up to 20MB.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document to upload"
// @Success      201   {object}  model.Document
// @Failure      400   {object}  errorPayload
// @Failure      413   {object}  errorPayload
// @Failure      422   {object}  errorPayload
// @Failure      500   {object}  errorPayload
// @Router       /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Upload(c.UserContext(), f, fh.Filename, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns one document with direct links to its files.
//
// @Summary      Get a document
// @Tags         documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  documentResponse
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		// Links are omitted when presigning fails.
		links, _ := svc.Links(c.UserContext(), doc)
		return c.JSON(documentResponse{Data: doc, Links: links})
	}
}

// DeleteDocument removes a document and both of its files.
//
// @Summary      Delete a document
// @Tags         documents
// @Param        id   path  string  true  "Document ID"
// @Success      204
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument sends the original upload as an attachment.
//
// @Summary      Download the original file
// @Tags         documents
// @Produce      octet-stream
// @Param        id   path  string  true  "Document ID"
// @Success      200  {file}  file
// @Failure      404  {object}  errorPayload
// @Router       /documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return sendFile(svc, service.FileOriginal, "attachment")
}

// PreviewDocument shows the PDF rendition inline.
//
// @Summary      Preview the PDF
// @Tags         documents
// @Produce      application/pdf
// @Param        id   path  string  true  "Document ID"
// @Success      200  {file}  file
// @Failure      404  {object}  errorPayload
// @Router       /documents/{id}/preview [get]
func PreviewDocument(svc service.DocumentService) fiber.Handler {
	return sendFile(svc, service.FilePDF, "inline")
}

func sendFile(svc service.DocumentService, kind service.FileKind, disposition string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		f, err := svc.Open(c.UserContext(), id, kind)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, f.ContentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType(disposition, map[string]string{"filename": f.Name}))
		size := -1
		if f.Size > 0 {
			size = int(f.Size)
		}
		// fasthttp closes the body once it has been written out.
		return c.SendStream(f.Body, size)
	}
}
