package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"

	"docconvert/internal/converter"
	"docconvert/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"since": humanize.Time,
	"add":   func(a, b int) int { return a + b },
	"sub":   func(a, b int) int { return a - b },
}).ParseFS(templateFS, "templates/*.html"))

const flashCookie = "flash"

type flash struct {
	Kind    string
	Message string
}

type galleryView struct {
	Flash  *flash
	Result *service.DocumentListResult
	Accept string
}

var acceptList = "." + strings.Join(converter.AllowedExtensions(), ",.")

func setFlash(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}

// takeFlash reads the one-shot flash message and clears it.
func takeFlash(c *fiber.Ctx) *flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.ClearCookie(flashCookie)
	v, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(v, "|")
	if !ok || (kind != "success" && kind != "error") {
		return nil
	}
	return &flash{Kind: kind, Message: msg}
}

// flashMessage is the user-facing text for a failed gallery action.
func flashMessage(err error) string {
	_, code, _ := classify(err)
	switch code {
	case "UNSUPPORTED_FILE_TYPE":
		return "Unsupported file type. Allowed: " + strings.Join(converter.AllowedExtensions(), ", ") + "."
	case "FILE_TOO_LARGE":
		return "The file is larger than the upload limit."
	case "NOT_FOUND":
		return "That document no longer exists."
	case "CONVERSION_FAILED":
		return "The document could not be converted to PDF."
	}
	return "Something went wrong, please try again."
}

// Gallery renders the document list with upload and delete forms.
func Gallery(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := strconv.Atoi(c.Query("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		view := galleryView{Flash: takeFlash(c), Accept: acceptList}
		status := fiber.StatusOK
		res, err := svc.List(c.UserContext(), page)
		if err != nil {
			// The page still renders so the upload form stays usable.
			status, _, _ = classify(err)
			view.Flash = &flash{Kind: "error", Message: flashMessage(err)}
			res = &service.DocumentListResult{Page: 1, LastPage: 1}
		}
		view.Result = res

		var buf bytes.Buffer
		if err := pages.ExecuteTemplate(&buf, "index", view); err != nil {
			return err
		}
		c.Type("html", "utf-8")
		return c.Status(status).Send(buf.Bytes())
	}
}

// GalleryUpload handles the upload form and redirects back to the list.
func GalleryUpload(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			setFlash(c, "error", "Please choose a file to upload.")
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		f, err := fh.Open()
		if err != nil {
			setFlash(c, "error", "The uploaded file could not be read.")
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		defer f.Close()

		if _, err := svc.Upload(c.UserContext(), f, fh.Filename, fh.Size); err != nil {
			setFlash(c, "error", flashMessage(err))
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		setFlash(c, "success", "Document uploaded and converted to PDF.")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}

// GalleryDelete handles the delete button of the list.
func GalleryDelete(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			setFlash(c, "error", "That document no longer exists.")
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			setFlash(c, "error", flashMessage(err))
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		setFlash(c, "success", "Document deleted.")
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}
