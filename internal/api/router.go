package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarlsen/planvault/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.RecordDocument)
	r.Get("/documents/{name}", h.GetDocument)

	// Project surfaces.
	r.Post("/init", h.InitProject)
	r.Get("/plan", h.ShowPlan)
	r.Get("/current", h.ShowCurrent)
	r.Get("/sprints/{id}", h.QuerySprint)
	r.Get("/status", h.Status)

	// Search and time.
	r.Get("/search", h.Search)
	r.Get("/now", h.Now)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
