// Package entryservice coordinates storage, index, and the token-text
// model for journal entries.
package entryservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/veleth/dagaz/internal/apperr"
	"github.com/veleth/dagaz/internal/checksum"
	"github.com/veleth/dagaz/internal/entryfile"
	"github.com/veleth/dagaz/internal/index"
	"github.com/veleth/dagaz/internal/models"
	"github.com/veleth/dagaz/internal/storage"
	"github.com/veleth/dagaz/internal/tokentext"
)

// EntryListItem is a lightweight item in a day listing.
type EntryListItem struct {
	Path       string    `json:"path"`
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Mood       string    `json:"mood,omitempty"`
	Checksum   string    `json:"checksum"`
	TokenTypes []string  `json:"token_types"`
	CreatedAt  time.Time `json:"created_at"`
}

// EditResult is returned by the editor operations: the persisted entry
// plus the caret position after the edit.
type EditResult struct {
	Entry  *models.Entry `json:"entry"`
	Cursor int           `json:"cursor"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new entry service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// entryPath is the storage layout convention: one file per entry under
// its day directory.
func entryPath(at time.Time, id string) string {
	return fmt.Sprintf("%04d/%02d/%02d/%s.md", at.Year(), int(at.Month()), at.Day(), id)
}

// GetEntry reads an entry from storage and parses it.
func (s *Service) GetEntry(_ context.Context, path string) (*models.Entry, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return buildEntry(path, data)
}

// CreateEntry writes a new entry and indexes it. A zero at timestamp
// means now; the day directory (and calendar key) follow at.
func (s *Service) CreateEntry(_ context.Context, at time.Time, title, mood, text string, details []models.DetailSelection) (*models.Entry, error) {
	if at.IsZero() {
		at = time.Now()
	}
	id := uuid.NewString()
	path := entryPath(at, id)

	data, err := entryfile.Marshal(entryfile.Meta{
		ID:        id,
		Title:     title,
		Mood:      mood,
		CreatedAt: at,
		Details:   details,
	}, text)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, data); err != nil {
		return nil, err
	}
	return buildEntry(path, data)
}

// UpdateEntry replaces an entry's content with optimistic concurrency.
// The entry id and creation timestamp are preserved from the stored file.
func (s *Service) UpdateEntry(_ context.Context, path, title, mood, text string, details []models.DetailSelection, ifMatch string) (*models.Entry, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}

	prev, err := entryfile.Parse(existing)
	if err != nil {
		return nil, err
	}
	meta := prev.Meta
	meta.Title = title
	meta.Mood = mood
	meta.Details = details

	data, err := entryfile.Marshal(meta, text)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, data); err != nil {
		return nil, err
	}
	return buildEntry(path, data)
}

// DeleteEntry removes an entry from storage and index.
func (s *Service) DeleteEntry(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteEntry(path)
}

// ListDay returns the entries of one calendar day, newest first.
func (s *Service) ListDay(_ context.Context, date time.Time) ([]EntryListItem, error) {
	rows, err := s.db.ListDay(models.DayKey(date))
	if err != nil {
		return nil, err
	}
	items := make([]EntryListItem, len(rows))
	for i, r := range rows {
		items[i] = EntryListItem{
			Path:       r.Path,
			ID:         r.ID,
			Title:      r.Title,
			Mood:       r.Mood,
			Checksum:   r.Checksum,
			TokenTypes: nonNilSlice(r.TokenTypes),
			CreatedAt:  r.CreatedAt,
		}
	}
	return items, nil
}

// MonthCounts returns entry counts per day key for one month.
func (s *Service) MonthCounts(_ context.Context, year int, month time.Month) (map[int]int, error) {
	start, end := models.DayKeyRange(year, month)
	return s.db.CountsByDay(start, end)
}

// YearCounts returns entry counts per day key for a whole year.
func (s *Service) YearCounts(_ context.Context, year int) (map[int]int, error) {
	start, end := models.DayKeyRange(year, 0)
	return s.db.CountsByDay(start, end)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// DetailEntries returns the paths of entries whose body links the given
// detail item via a DET token.
func (s *Service) DetailEntries(_ context.Context, itemID string) ([]string, error) {
	return s.db.EntriesForDetail(itemID)
}

// InsertToken applies the atomic token insert to an entry body at the
// given selection and persists the result. The selection is clamped to
// the body bounds and either end landing inside an existing token is
// snapped to its boundary first, so a stale client selection can never
// split a token. Returns the updated entry and the caret position.
func (s *Service) InsertToken(ctx context.Context, path string, typ tokentext.TokenType, payload string, selStart, selEnd int) (*EditResult, error) {
	if !knownTokenType(typ) {
		return nil, fmt.Errorf("%w: unknown token type %q", apperr.ErrInvalid, typ)
	}
	return s.editBody(ctx, path, func(body string) (string, int) {
		sel := tokentext.Cursor{
			Start: tokentext.NormalizeCursor(body, selStart),
			End:   tokentext.NormalizeCursor(body, selEnd),
		}
		return tokentext.InsertTokenAt(body, typ, payload, sel)
	})
}

// ApplyTextEdit applies a free text change to an entry body under the
// token-protection policy and persists the result.
func (s *Service) ApplyTextEdit(ctx context.Context, path, newText string, changeStart, deletedCount, insertedCount int) (*EditResult, error) {
	return s.editBody(ctx, path, func(body string) (string, int) {
		return tokentext.ApplyTextEdit(body, newText, changeStart, deletedCount, insertedCount)
	})
}

// Render projects an entry body into drawable items. playing is the
// payload of the audio token currently playing, if any.
func (s *Service) Render(_ context.Context, path, playing string) ([]tokentext.RenderItem, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := entryfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return tokentext.Project(tokentext.Parse(res.Body), tokentext.ActiveState{PlayingAudio: playing}), nil
}

// editBody runs one body transform read-modify-write: load, transform,
// persist, reindex.
func (s *Service) editBody(_ context.Context, path string, transform func(body string) (string, int)) (*EditResult, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res, err := entryfile.Parse(data)
	if err != nil {
		return nil, err
	}

	newBody, cursor := transform(res.Body)

	updated, err := entryfile.Marshal(res.Meta, newBody)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, updated); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, updated); err != nil {
		return nil, err
	}
	entry, err := buildEntry(path, updated)
	if err != nil {
		return nil, err
	}
	return &EditResult{Entry: entry, Cursor: cursor}, nil
}

// IndexFile parses entry data and upserts it into the index.
// Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	res, err := entryfile.Parse(data)
	if err != nil {
		return err
	}
	cs := checksum.Sum(data)
	dayKey := 0
	if !res.Meta.CreatedAt.IsZero() {
		dayKey = models.DayKey(res.Meta.CreatedAt)
	}
	return s.db.UpsertEntry(index.EntryRow{
		Path:       path,
		ID:         res.Meta.ID,
		DayKey:     dayKey,
		Title:      res.Meta.Title,
		Mood:       res.Meta.Mood,
		Checksum:   cs,
		TokenTypes: res.TokenTypes(),
		Details:    res.Meta.Details,
		CreatedAt:  res.Meta.CreatedAt,
		UpdatedAt:  time.Now(),
	}, res.Body, res.DetailRefs())
}

// buildEntry constructs an Entry from raw file data without re-reading it.
func buildEntry(path string, data []byte) (*models.Entry, error) {
	res, err := entryfile.Parse(data)
	if err != nil {
		return nil, err
	}
	return &models.Entry{
		ID:        res.Meta.ID,
		Path:      path,
		Title:     res.Meta.Title,
		Mood:      res.Meta.Mood,
		Text:      res.Body,
		Details:   nonNilSlice(res.Meta.Details),
		Checksum:  checksum.Sum(data),
		CreatedAt: res.Meta.CreatedAt,
		UpdatedAt: time.Now(),
	}, nil
}

func knownTokenType(typ tokentext.TokenType) bool {
	for _, t := range tokentext.TokenTypes {
		if t == typ {
			return true
		}
	}
	return false
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
