//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries_fts`).Scan(&count); err != nil {
		t.Fatalf("entries_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := entryAt("2026/08/31/fts.md", "fts", 20260831, time.Now())
	row.Title = "FTS Entry"
	if err := db.UpsertEntry(row, "Journaling with powerful full-text search built in.", nil); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "2026/08/31/fts.md" {
		t.Errorf("path = %q", results[0].Path)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(entryAt("gone.md", "g", 20260831, time.Now()), "vanishing content", nil)
	_ = db.DeleteEntry("gone.md")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "gone.md" {
			t.Error("deleted entry still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	old := entryAt("evo.md", "e", 20260831, now)
	old.Title = "Old"
	_ = db.UpsertEntry(old, "original text", nil)

	updated := entryAt("evo.md", "e", 20260831, now)
	updated.Title = "New"
	_ = db.UpsertEntry(updated, "replacement text", nil)

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
