package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/Masterminds/sprig"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/capitalize-ai/travelers-buddy/internal/middleware"
	"github.com/capitalize-ai/travelers-buddy/internal/model"
	"github.com/capitalize-ai/travelers-buddy/internal/session"
	"github.com/capitalize-ai/travelers-buddy/pkg/logger"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").
		Funcs(sprig.HtmlFuncMap()).
		Funcs(template.FuncMap{"markdown": renderMarkdown}).
		ParseFS(templateFS, "templates/page.html"),
)

type pageData struct {
	Persona model.Persona
	View    model.View
	Exit    string
}

// PageHandler serves the single chat page. Form posts apply one operation
// and redirect back to the page, which renders the current view.
type PageHandler struct {
	registry *session.Registry
	persona  model.Persona
	logger   *logger.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(registry *session.Registry, persona model.Persona, log *logger.Logger) *PageHandler {
	return &PageHandler{
		registry: registry,
		persona:  persona,
		logger:   log,
	}
}

// Show handles GET /
func (h *PageHandler) Show(w http.ResponseWriter, r *http.Request) {
	var view model.View
	_ = h.registry.Do(middleware.GetSessionID(r.Context()), func(c *session.Controller) error {
		view = c.View()
		return nil
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := pageTemplate.Execute(w, pageData{
		Persona: h.persona,
		View:    view,
		Exit:    session.ExitWord,
	})
	if err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
	}
}

// Input handles POST /chat/input
func (h *PageHandler) Input(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	text := r.PostForm.Get("text")
	if err := middleware.ValidateInput(text); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.apply(w, r, func(c *session.Controller) error {
		c.HandleInput(r.Context(), text)
		return nil
	})
}

// StartNew handles POST /chat/new
func (h *PageHandler) StartNew(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(c *session.Controller) error {
		c.StartNew(r.Context())
		return nil
	})
}

// Resume handles POST /chat/resume/{index}
func (h *PageHandler) Resume(w http.ResponseWriter, r *http.Request) {
	index, err := middleware.ParseArchiveIndex(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.apply(w, r, func(c *session.Controller) error {
		return c.Resume(r.Context(), index)
	})
}

func (h *PageHandler) apply(w http.ResponseWriter, r *http.Request, op func(*session.Controller) error) {
	err := h.registry.Do(middleware.GetSessionID(r.Context()), op)
	if err != nil {
		h.logger.Error("page operation failed",
			zap.String("session_id", middleware.GetSessionID(r.Context())),
			zap.Error(err),
		)
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrInvalidResumeIndex) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
