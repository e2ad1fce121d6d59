package server

import (
	"net/http"

	"github.com/null-create/mcp-guard/pkg/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the verification and audit endpoints. Baseline mutation
// routes sit behind JWT auth; verification itself is open, since a verify
// call can only record a first-sight baseline or read.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check
	r.Get("/health", h.HealthCheckHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/verify", func(r chi.Router) {
			r.Post("/tool", h.VerifyToolHandler)
			r.Post("/tools", h.VerifyToolsHandler)
		})

		r.Route("/baselines", func(r chi.Router) {
			r.Get("/", h.ListBaselinesHandler)

			// Trusted mutation paths
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware)
				r.Post("/", h.RecordBaselineHandler)
				r.Delete("/", h.RemoveBaselineHandler)
			})
		})

		r.Post("/validate/description", h.ValidateDescriptionHandler)
		r.Post("/notify", h.NotifyHandler)
	})

	return r
}
