package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docconvert/internal/http/middleware"
	"docconvert/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; upload, conversion and cleanup live in the service.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Redirect("/swagger/index.html", fiber.StatusMovedPermanently)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Browser gallery
	app.Get("/", middleware.NoStore(), Gallery(docSvc))
	app.Post("/upload", GalleryUpload(docSvc))
	app.Post("/documents/:id/delete", GalleryDelete(docSvc))

	// JSON API
	app.Get("/documents", ListDocuments(docSvc))
	app.Post("/documents", UploadDocument(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))
	app.Delete("/documents/:id", DeleteDocument(docSvc))
	app.Get("/documents/:id/download", DownloadDocument(docSvc))
	app.Get("/documents/:id/preview", PreviewDocument(docSvc))
}
