package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/veleth/dagaz/internal/apperr"
	"github.com/veleth/dagaz/internal/entryservice"
	"github.com/veleth/dagaz/internal/models"
	"github.com/veleth/dagaz/internal/tokentext"
)

// Handler holds API route handlers.
type Handler struct {
	svc *entryservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *entryservice.Service) *Handler {
	return &Handler{svc: svc}
}

// entryPath extracts the entry path from the URL (everything after /api/entries/).
// Supports encoded slashes from OpenAPI clients (e.g. 2026%2F08%2F31%2Fid.md).
func entryPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// parseDay accepts "2006-01-02" and returns the date, or an error.
func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ListDay handles GET /api/entries.
//
//	@Summary		List entries for a calendar day
//	@Tags			entries
//	@Produce		json
//	@Param			day	query		string	true	"Day in YYYY-MM-DD format"
//	@Success		200	{object}	EntryListResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListDay(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if day == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'day' is required"))
		return
	}
	date, err := parseDay(day)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("day must be YYYY-MM-DD"))
		return
	}
	items, err := h.svc.ListDay(r.Context(), date)
	if err != nil {
		slog.Error("list day failed", slog.String("day", day), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: items, Total: len(items)})
}

// GetEntry handles GET /api/entries/*.
//
//	@Summary		Get a single entry by path
//	@Tags			entries
//	@Produce		json
//	@Param			path	path		string	true	"Entry path"
//	@Success		200		{object}	models.Entry
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{path} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	path := entryPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	entry, err := h.svc.GetEntry(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get entry failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// CreateEntry handles POST /api/entries.
//
//	@Summary		Create a new journal entry
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateEntryRequest	true	"Entry to create"
//	@Success		201		{object}	models.Entry
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries [post]
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	var at time.Time
	if req.Date != "" {
		var err error
		at, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			at, err = parseDay(req.Date)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody("date must be RFC 3339 or YYYY-MM-DD"))
				return
			}
		}
	}
	entry, err := h.svc.CreateEntry(r.Context(), at, req.Title, req.Mood, req.Text, req.Details)
	if err != nil {
		slog.Error("create entry failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// UpdateEntry handles PUT /api/entries/*.
//
//	@Summary		Update an entry with optimistic concurrency
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string				true	"Entry path"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateEntryRequest	true	"Updated entry"
//	@Success		200			{object}	models.Entry
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{path} [put]
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := entryPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	entry, err := h.svc.UpdateEntry(r.Context(), path, req.Title, req.Mood, req.Text, req.Details, ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("update entry failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /api/entries/*.
//
//	@Summary		Delete an entry
//	@Tags			entries
//	@Param			path	path	string	true	"Entry path"
//	@Success		204		"Entry deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{path} [delete]
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	path := entryPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteEntry(r.Context(), path); err != nil {
		slog.Error("delete entry failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InsertToken handles POST /api/editor/token.
//
//	@Summary		Insert an inline token into an entry body
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			body	body		InsertTokenRequest	true	"Token insertion"
//	@Success		200		{object}	entryservice.EditResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/editor/token [post]
func (h *Handler) InsertToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req InsertTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	res, err := h.svc.InsertToken(r.Context(), req.Path, tokentext.TokenType(req.Type), req.Payload, req.SelectionStart, req.SelectionEnd)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("insert token failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ApplyTextEdit handles POST /api/editor/text.
//
//	@Summary		Apply a free text edit with token protection
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TextEditRequest	true	"Text edit"
//	@Success		200		{object}	entryservice.EditResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/editor/text [post]
func (h *Handler) ApplyTextEdit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req TextEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	res, err := h.svc.ApplyTextEdit(r.Context(), req.Path, req.NewText, req.ChangeStart, req.DeletedCount, req.InsertedCount)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("text edit failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Render handles GET /api/render.
//
//	@Summary		Project an entry body into renderable items
//	@Tags			editor
//	@Produce		json
//	@Param			path	query		string	true	"Entry path"
//	@Param			playing	query		string	false	"Payload of the audio token currently playing"
//	@Success		200		{object}	map[string]any
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [get]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	playing := r.URL.Query().Get("playing")
	items, err := h.svc.Render(r.Context(), path, playing)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("render failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

// CalendarYear handles GET /api/calendar/{year}.
//
//	@Summary		Per-day entry counts for a whole year
//	@Tags			calendar
//	@Produce		json
//	@Param			year	path		int	true	"Year"
//	@Success		200		{object}	CalendarResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/{year} [get]
func (h *Handler) CalendarYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid year"))
		return
	}
	counts, err := h.svc.YearCounts(r.Context(), year)
	if err != nil {
		slog.Error("calendar year failed", slog.Int("year", year), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, CalendarResponse{Counts: counts})
}

// CalendarMonth handles GET /api/calendar/{year}/{month}.
//
//	@Summary		Per-day entry counts for a month
//	@Tags			calendar
//	@Produce		json
//	@Param			year	path		int	true	"Year"
//	@Param			month	path		int	true	"Month (1-12)"
//	@Success		200		{object}	CalendarResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calendar/{year}/{month} [get]
func (h *Handler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid year"))
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid month"))
		return
	}
	counts, err := h.svc.MonthCounts(r.Context(), year, time.Month(month))
	if err != nil {
		slog.Error("calendar month failed", slog.Int("year", year), slog.Int("month", month), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, CalendarResponse{Counts: counts})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across entries
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// DetailCategories handles GET /api/details/categories.
func (h *Handler) DetailCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": models.DefaultDetailCategories(),
	})
}

// DetailEntries handles GET /api/details/{item}/entries.
//
//	@Summary		Entries that reference a detail item via DET tokens
//	@Tags			details
//	@Produce		json
//	@Param			item	path		string	true	"Detail item ID"
//	@Success		200		{object}	EntryListResponse
//	@Security		BearerAuth
//	@Router			/details/{item}/entries [get]
func (h *Handler) DetailEntries(w http.ResponseWriter, r *http.Request) {
	item := chi.URLParam(r, "item")
	if item == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("item is required"))
		return
	}
	paths, err := h.svc.DetailEntries(r.Context(), item)
	if err != nil {
		slog.Error("detail entries failed", slog.String("item", item), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"paths": paths,
		"total": len(paths),
	})
}
