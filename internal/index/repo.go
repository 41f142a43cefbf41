package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veleth/dagaz/internal/models"
)

// EntryRow represents a row in the entries table.
type EntryRow struct {
	Path       string
	ID         string
	DayKey     int
	Title      string
	Mood       string
	Checksum   string
	TokenTypes []string
	Details    []models.DetailSelection
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertEntry inserts or replaces an entry, its FTS row, and its detail
// links within a transaction.
func (db *DB) UpsertEntry(e EntryRow, body string, detailRefs []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	typesJSON, _ := json.Marshal(e.TokenTypes)
	detailsJSON, _ := json.Marshal(e.Details)

	// Upsert entries table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO entries (path, id, day_key, title, mood, checksum, token_types, details, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id          = excluded.id,
			day_key     = excluded.day_key,
			title       = excluded.title,
			mood        = excluded.mood,
			checksum    = excluded.checksum,
			token_types = excluded.token_types,
			details     = excluded.details,
			body        = excluded.body,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at
	`, e.Path, e.ID, e.DayKey, e.Title, e.Mood, e.Checksum, string(typesJSON), string(detailsJSON), body, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, e.Path, e.Title, body, e.Mood); err != nil {
		return err
	}

	// Replace detail links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM detail_links WHERE source = ?`, e.Path)
	if len(detailRefs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO detail_links (source, item_id) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare detail link insert: %w", err)
		}
		defer stmt.Close()
		for _, item := range detailRefs {
			if _, err := stmt.Exec(e.Path, item); err != nil {
				return fmt.Errorf("index: insert detail link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteEntry removes an entry, its FTS row, and its detail links.
func (db *DB) DeleteEntry(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM detail_links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for an entry, or empty string if
// not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM entries WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetEntry returns one indexed entry row, or nil when absent.
func (db *DB) GetEntry(path string) (*EntryRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, id, day_key, title, mood, checksum, token_types, details, created_at, updated_at
		FROM entries WHERE path = ?
	`, path)
	e, err := scanEntryRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get entry: %w", err)
	}
	return e, nil
}

// ListDay returns every entry for a day key, newest first.
func (db *DB) ListDay(dayKey int) ([]EntryRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, id, day_key, title, mood, checksum, token_types, details, created_at, updated_at
		FROM entries
		WHERE day_key = ?
		ORDER BY created_at DESC
	`, dayKey)
	if err != nil {
		return nil, fmt.Errorf("index: list day: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		e, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// CountsByDay returns entry counts per day key over an inclusive key
// range, serving the month and year calendar views from indexed keys.
func (db *DB) CountsByDay(startKey, endKey int) (map[int]int, error) {
	rows, err := db.conn.Query(`
		SELECT day_key, count(*)
		FROM entries
		WHERE day_key BETWEEN ? AND ?
		GROUP BY day_key
	`, startKey, endKey)
	if err != nil {
		return nil, fmt.Errorf("index: counts by day: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var key, n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// EntriesForDetail returns the paths of all entries whose body references
// the given detail item via a DET token.
func (db *DB) EntriesForDetail(itemID string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM detail_links WHERE item_id = ?`, itemID)
	if err != nil {
		return nil, fmt.Errorf("index: entries for detail: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed entry path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns the checksum of every indexed entry keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntryRow(r rowScanner) (*EntryRow, error) {
	var e EntryRow
	var typesJSON, detailsJSON string
	var createdAt sql.NullTime
	if err := r.Scan(&e.Path, &e.ID, &e.DayKey, &e.Title, &e.Mood, &e.Checksum, &typesJSON, &detailsJSON, &createdAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(typesJSON), &e.TokenTypes)
	_ = json.Unmarshal([]byte(detailsJSON), &e.Details)
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	return &e, nil
}
