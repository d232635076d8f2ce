package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/capitalize-ai/travelers-buddy/internal/middleware"
	"github.com/capitalize-ai/travelers-buddy/internal/model"
	"github.com/capitalize-ai/travelers-buddy/internal/session"
	"github.com/capitalize-ai/travelers-buddy/pkg/logger"
)

// InputRequest is the body of POST /api/v1/session/messages.
type InputRequest struct {
	Text string `json:"text"`
}

// SessionHandler exposes the chat session as a JSON API. Every endpoint
// applies one operation and answers with the resulting view.
type SessionHandler struct {
	registry *session.Registry
	logger   *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(registry *session.Registry, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   log,
	}
}

// View handles GET /api/v1/session
func (h *SessionHandler) View(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(*session.Controller) error { return nil })
}

// Input handles POST /api/v1/session/messages
func (h *SessionHandler) Input(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateInput(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.apply(w, r, func(c *session.Controller) error {
		c.HandleInput(r.Context(), req.Text)
		return nil
	})
}

// StartNew handles POST /api/v1/session/new
func (h *SessionHandler) StartNew(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(c *session.Controller) error {
		c.StartNew(r.Context())
		return nil
	})
}

// Resume handles POST /api/v1/session/resume/{index}
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	index, err := middleware.ParseArchiveIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.apply(w, r, func(c *session.Controller) error {
		return c.Resume(r.Context(), index)
	})
}

// End handles POST /api/v1/session/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(c *session.Controller) error {
		c.EndConversation(r.Context())
		return nil
	})
}

func (h *SessionHandler) apply(w http.ResponseWriter, r *http.Request, op func(*session.Controller) error) {
	var view model.View
	err := h.registry.Do(middleware.GetSessionID(r.Context()), func(c *session.Controller) error {
		if err := op(c); err != nil {
			return err
		}
		view = c.View()
		return nil
	})

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view)
	case errors.Is(err, session.ErrInvalidResumeIndex):
		h.logger.Error("rejected resume request",
			zap.String("session_id", middleware.GetSessionID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("session operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "session operation failed")
	}
}
