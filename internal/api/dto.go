package api

import (
	"github.com/veleth/dagaz/internal/entryservice"
	"github.com/veleth/dagaz/internal/models"
)

// CreateEntryRequest is the request body for creating an entry.
type CreateEntryRequest struct {
	// Date is the calendar day of the entry, RFC 3339 or "2006-01-02".
	// Empty means now.
	Date    string                   `json:"date,omitempty"`
	Title   string                   `json:"title"`
	Mood    string                   `json:"mood,omitempty"`
	Text    string                   `json:"text"`
	Details []models.DetailSelection `json:"details,omitempty"`
}

// UpdateEntryRequest is the request body for updating an entry.
type UpdateEntryRequest struct {
	Title   string                   `json:"title"`
	Mood    string                   `json:"mood,omitempty"`
	Text    string                   `json:"text"`
	Details []models.DetailSelection `json:"details,omitempty"`
}

// InsertTokenRequest is the request body for the programmatic token
// insertion editor operation.
type InsertTokenRequest struct {
	Path           string `json:"path"`
	Type           string `json:"type"`
	Payload        string `json:"payload"`
	SelectionStart int    `json:"selection_start"`
	SelectionEnd   int    `json:"selection_end"`
}

// TextEditRequest is the request body for a free text edit (typing, IME,
// paste) routed through the token-protection policy.
type TextEditRequest struct {
	Path          string `json:"path"`
	NewText       string `json:"new_text"`
	ChangeStart   int    `json:"change_start"`
	DeletedCount  int    `json:"deleted_count"`
	InsertedCount int    `json:"inserted_count"`
}

// EntryListResponse wraps a day listing.
type EntryListResponse struct {
	Entries []entryservice.EntryListItem `json:"entries"`
	Total   int                          `json:"total"`
}

// CalendarResponse wraps per-day entry counts keyed by day key
// (year*10000 + month*100 + day).
type CalendarResponse struct {
	Counts map[int]int `json:"counts"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// MediaUploadResponse is returned after a successful media upload. URI is
// what an IMG or AUD token payload should carry.
type MediaUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URI      string `json:"uri"`
}
