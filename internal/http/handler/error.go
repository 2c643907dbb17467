package handler

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docconvert/internal/converter"
	"docconvert/internal/http/middleware"
	"docconvert/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

var allowedTypesMessage = "unsupported file type; allowed: " + strings.Join(converter.AllowedExtensions(), ", ")

// classify maps a service error to its HTTP status, code and safe message.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrIDRequired):
		return fiber.StatusBadRequest, "INVALID_ID", "invalid id format"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return fiber.StatusNotFound, "NOT_FOUND", "document not found"
	case errors.Is(err, service.ErrReaderNil):
		return fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"
	case errors.Is(err, service.ErrUnsupportedFileType):
		return fiber.StatusUnprocessableEntity, "UNSUPPORTED_FILE_TYPE", allowedTypesMessage
	case errors.Is(err, service.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload size limit"
	case errors.Is(err, service.ErrConversionFailed):
		return fiber.StatusInternalServerError, "CONVERSION_FAILED", "the document could not be converted to PDF"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

func writeServiceError(c *fiber.Ctx, err error) error {
	status, code, msg := classify(err)
	return writeError(c, status, code, msg)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "file exceeds the upload size limit")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
