package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter sets up HTTP routes. Version and health stay unauthenticated;
// the session routes require the API key when one is configured.
func NewRouter(h *Handler, apiKey string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/version", h.GetVersion)
	r.Get("/healthz", h.GetHealth)

	r.Group(func(r chi.Router) {
		r.Use(RequireAPIKey(apiKey))

		r.Post("/sessions", h.CreateSession)
		r.Post("/sessions/feed", h.CreateSessionFromFeed)
		r.Get("/sessions/{sessionID}", h.GetSession)
		r.Get("/sessions/{sessionID}/ws", h.Observe)
	})

	return r
}
