package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	mediaDir       = "media"
	maxUploadBytes = 50 << 20 // 50 MB
)

// MediaHandler serves and accepts media files (photos, voice recordings)
// referenced by IMG and AUD token payloads.
type MediaHandler struct {
	journalRoot string
}

// NewMediaHandler creates a handler rooted at the journal directory.
func NewMediaHandler(journalRoot string) *MediaHandler {
	return &MediaHandler{journalRoot: journalRoot}
}

// mediaPath returns the absolute path to the media directory.
func (h *MediaHandler) mediaPath() string {
	return filepath.Join(h.journalRoot, mediaDir)
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) and returns the absolute path under the media dir.
func (h *MediaHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	// Reject anything with path separators or traversal.
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.mediaPath(), cleaned)
	// Double-check the resolved path is under the media dir.
	if !strings.HasPrefix(abs, h.mediaPath()+string(os.PathSeparator)) && abs != h.mediaPath() {
		return "", fmt.Errorf("path escapes media directory")
	}
	return abs, nil
}

// ServeFile handles GET /media/{filename}.
func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/media (multipart/form-data, field "file").
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	abs, err := h.safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	// Ensure the media directory exists.
	if err := os.MkdirAll(h.mediaPath(), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create media dir"))
		return
	}

	dst, err := os.Create(abs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create file"))
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	writeJSON(w, http.StatusCreated, MediaUploadResponse{
		Filename: header.Filename,
		Size:     written,
		URI:      "/media/" + header.Filename,
	})
}
