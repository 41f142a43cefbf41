package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veleth/dagaz/internal/entryservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// journalRoot is used to resolve the media directory.
func NewRouter(svc *entryservice.Service, authEnabled bool, token string, sseHandler http.Handler, journalRoot string) chi.Router {
	h := NewHandler(svc)
	mh := NewMediaHandler(journalRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Entries CRUD.
	r.Get("/entries", h.ListDay)
	r.Post("/entries", h.CreateEntry)
	r.Get("/entries/*", h.GetEntry)
	r.Put("/entries/*", h.UpdateEntry)
	r.Delete("/entries/*", h.DeleteEntry)

	// Editor operations.
	r.Post("/editor/token", h.InsertToken)
	r.Post("/editor/text", h.ApplyTextEdit)
	r.Get("/render", h.Render)

	// Calendar aggregates.
	r.Get("/calendar/{year}", h.CalendarYear)
	r.Get("/calendar/{year}/{month}", h.CalendarMonth)

	// Search.
	r.Get("/search", h.Search)

	// Detail chips.
	r.Get("/details/categories", h.DetailCategories)
	r.Get("/details/{item}/entries", h.DetailEntries)

	// Media upload (auth-protected).
	r.Post("/media", mh.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
