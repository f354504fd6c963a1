package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/insightdelivered/expense-insight/internal/dashboard"
	"github.com/insightdelivered/expense-insight/internal/models"
	"github.com/insightdelivered/expense-insight/internal/upload"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrorResponse is the JSON body for failed /api requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StateResponse is the JSON view of one browser's state.
type StateResponse struct {
	Success    bool                   `json:"success"`
	View       string                 `json:"view"` // "upload" or "results"
	File       *models.UploadedFile   `json:"file,omitempty"`
	PreviewURL string                 `json:"previewUrl,omitempty"`
	Busy       bool                   `json:"busy"`
	Error      string                 `json:"error,omitempty"`
	Result     *models.AnalysisResult `json:"result,omitempty"`
}

// Handler holds the HTTP handlers for the web front-end.
type Handler struct {
	Analyzer upload.Analyzer
	Sessions *Sessions
	Previews *upload.Previews
	Store    *session.Store
	Version  string
}

type pageData struct {
	Form               upload.Snapshot
	PreviewURL         string
	Accept             string
	View               *dashboard.View
	ColorNormal        template.CSS
	ColorAnomaly       template.CSS
	NoAnomaliesMessage string
}

// Options configures NewApp.
type Options struct {
	BodyLimit int
	AccessLog bool
}

// NewApp builds the fiber app with middleware and routes.
func NewApp(h *Handler, o Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "expense-insight",
		BodyLimit:             o.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	if o.AccessLog {
		app.Use(logger.New())
	}
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.handleIndex)
	app.Post("/file", h.handleSelectFile)
	app.Post("/file/remove", h.handleRemoveFile)
	app.Get("/preview/:id", h.handlePreview)
	app.Post("/analyze", h.handleAnalyze)
	app.Post("/reset", h.handleReset)
	app.Get("/chart", h.handleChart)
	app.Get("/export.csv", h.handleExport)

	app.Get("/api/state", h.handleState)
	app.Get("/api/health", h.handleHealth)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": h.Version,
	})
}

func (h *Handler) handleIndex(c *fiber.Ctx) error {
	sh, err := h.shell(c)
	if err != nil {
		return err
	}

	data := pageData{
		Accept:             upload.AcceptAttr,
		ColorNormal:        template.CSS(dashboard.ColorNormal),
		ColorAnomaly:       template.CSS(dashboard.ColorAnomaly),
		NoAnomaliesMessage: dashboard.NoAnomaliesMessage,
	}
	if result, ok := sh.State().Result(); ok {
		v := dashboard.NewView(result)
		data.View = &v
	} else {
		data.Form = sh.Form().Snapshot()
		data.PreviewURL = previewURL(data.Form.PreviewID)
	}

	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) handleSelectFile(c *fiber.Ctx) error {
	sh, err := h.shell(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file.")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded file.")
	}

	if err := sh.Form().SelectFile(fh.Filename, data); err != nil {
		if !errors.Is(err, upload.ErrUnsupportedType) {
			return err
		}
		log.Debugf("rejected %s: %v", fh.Filename, err)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) handleRemoveFile(c *fiber.Ctx) error {
	sh, err := h.shell(c)
	if err != nil {
		return err
	}
	sh.Form().RemoveFile()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) handlePreview(c *fiber.Ctx) error {
	sh, err := h.shell(c)
	if err != nil {
		return err
	}

	id := c.Params("id")
	// only the owning form's live preview is served
	if id == "" || sh.Form().Snapshot().PreviewID != id {
		return fiber.ErrNotFound
	}
	pv, ok := h.Previews.Open(id)
	if !ok {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderContentType, pv.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(pv.Data)
}

func (h *Handler) handleAnalyze(c *fiber.Ctx) error {
	sh, err := h.shell(c)
	if err != nil {
		return err
	}

	out, err := sh.Form().Submit(c.UserContext(), h.Analyzer, sh.Complete)
	if errors.Is(err, upload.ErrBusy) {
		return fiber.NewError(fiber.StatusConflict, "Analysis already in progress.")
	}
	if err != nil {
		return err
	}
	if out.Kind == models.OutcomeFailure {
		log.Warnf("analysis failed (status %d): %s", out.Status, out.Message)
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) handleReset(c *fiber.Ctx) error {
	sh, err := h.shell(c)
	if err != nil {
		return err
	}
	sh.Reset()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) handleChart(c *fiber.Ctx) error {
	result, err := h.result(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dashboard.RenderChart(&buf, dashboard.ChartData(result)); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) handleExport(c *fiber.Ctx) error {
	result, err := h.result(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	e := &dashboard.CSVExporter{IncludeInsight: true}
	if err := e.Write(&buf, result); err != nil {
		return err
	}
	c.Attachment("flagged-transactions.csv")
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) handleState(c *fiber.Ctx) error {
	sh, err := h.shell(c)
	if err != nil {
		return err
	}

	resp := StateResponse{Success: true, View: "upload"}
	if result, ok := sh.State().Result(); ok {
		resp.View = "results"
		resp.Result = &result
		return c.JSON(resp)
	}

	snap := sh.Form().Snapshot()
	resp.File = snap.File
	resp.PreviewURL = previewURL(snap.PreviewID)
	resp.Busy = snap.Busy
	resp.Error = snap.Error
	return c.JSON(resp)
}

// shell resolves the caller's Shell from the session cookie, issuing a new
// cookie on first contact.
func (h *Handler) shell(c *fiber.Ctx) (*Shell, error) {
	sess, err := h.Store.Get(c)
	if err != nil {
		return nil, err
	}
	// Save on every request so the storage entry and cookie slide with activity.
	id := sess.ID()
	if err := sess.Save(); err != nil {
		return nil, err
	}
	return h.Sessions.Get(id), nil
}

func (h *Handler) result(c *fiber.Ctx) (models.AnalysisResult, error) {
	sh, err := h.shell(c)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	result, ok := sh.State().Result()
	if !ok {
		return models.AnalysisResult{}, fiber.NewError(fiber.StatusNotFound, "No analysis result.")
	}
	return result, nil
}

func previewURL(id string) string {
	if id == "" {
		return ""
	}
	return "/preview/" + id
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	} else {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(ErrorResponse{Success: false, Error: msg})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(msg)
}
