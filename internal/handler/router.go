package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/travelers-buddy/internal/middleware"
	"github.com/capitalize-ai/travelers-buddy/internal/model"
	natsclient "github.com/capitalize-ai/travelers-buddy/internal/nats"
	"github.com/capitalize-ai/travelers-buddy/internal/session"
	"github.com/capitalize-ai/travelers-buddy/pkg/logger"
)

// RouterConfig carries the dependencies of the HTTP surface.
type RouterConfig struct {
	Registry     *session.Registry
	Persona      model.Persona
	NATS         *natsclient.Client
	Logger       *logger.Logger
	CookieSecure bool
}

// NewRouter builds the HTTP handler for the page, the JSON API and the
// operational endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	healthHandler := NewHealthHandler(cfg.NATS)
	pageHandler := NewPageHandler(cfg.Registry, cfg.Persona, cfg.Logger)
	sessionHandler := NewSessionHandler(cfg.Registry, cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.CookieSecure))

		// Page
		r.Get("/", pageHandler.Show)
		r.Post("/chat/input", pageHandler.Input)
		r.Post("/chat/new", pageHandler.StartNew)
		r.Post("/chat/resume/{index}", pageHandler.Resume)

		// JSON API
		r.Route("/api/v1/session", func(r chi.Router) {
			r.Get("/", sessionHandler.View)
			r.Post("/messages", sessionHandler.Input)
			r.Post("/new", sessionHandler.StartNew)
			r.Post("/resume/{index}", sessionHandler.Resume)
			r.Post("/end", sessionHandler.End)
		})
	})

	return r
}
