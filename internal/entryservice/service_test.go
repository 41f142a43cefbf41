package entryservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veleth/dagaz/internal/apperr"
	"github.com/veleth/dagaz/internal/models"
	"github.com/veleth/dagaz/internal/testutil"
	"github.com/veleth/dagaz/internal/tokentext"
)

func testService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestJournal(t)
	db := testutil.TestDB(t)
	return NewService(store, db)
}

var testDay = time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)

func TestCreateEntry_PathLayout(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	entry, err := svc.CreateEntry(ctx, testDay, "Morning", "good", "hello", nil)
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	wantPrefix := "2026/08/31/"
	if len(entry.Path) <= len(wantPrefix) || entry.Path[:len(wantPrefix)] != wantPrefix {
		t.Errorf("path = %q, want %q prefix", entry.Path, wantPrefix)
	}
	if entry.ID == "" {
		t.Error("entry has no id")
	}
	if entry.Checksum == "" {
		t.Error("entry has no checksum")
	}
}

func TestCreateEntry_RoundTrip(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	details := []models.DetailSelection{{CategoryID: "physical", ItemID: "exercise", ItemTitle: "Exercise"}}
	created, err := svc.CreateEntry(ctx, testDay, "Gym", "focused", "sets done [DET:exercise]", details)
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	got, err := svc.GetEntry(ctx, created.Path)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Title != "Gym" || got.Mood != "focused" {
		t.Errorf("meta = %q/%q", got.Title, got.Mood)
	}
	if got.Text != "sets done [DET:exercise]" {
		t.Errorf("text = %q", got.Text)
	}
	if len(got.Details) != 1 || got.Details[0].ItemID != "exercise" {
		t.Errorf("details = %+v", got.Details)
	}
	if !got.CreatedAt.Equal(testDay) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, testDay)
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	svc := testService(t)
	_, err := svc.GetEntry(context.Background(), "2026/01/01/nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateEntry_ChecksumConflict(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, testDay, "T", "", "v1", nil)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateEntry(ctx, created.Path, "T", "", "v2", nil, created.Checksum)
	if err != nil {
		t.Fatalf("update with fresh checksum: %v", err)
	}
	if updated.Text != "v2" {
		t.Errorf("text = %q", updated.Text)
	}
	if updated.ID != created.ID {
		t.Errorf("id changed: %q -> %q", created.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}

	// Stale checksum refused.
	if _, err := svc.UpdateEntry(ctx, created.Path, "T", "", "v3", nil, created.Checksum); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v, want ErrConflict", err)
	}
}

func TestDeleteEntry_RemovesFromIndex(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, testDay, "Bye", "", "gone", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteEntry(ctx, created.Path); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}

	items, err := svc.ListDay(ctx, testDay)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("day listing after delete = %d items", len(items))
	}
}

func TestListDay_TokenTypes(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.CreateEntry(ctx, testDay, "Walk", "", "pic [IMG:a.jpg] sound [AUD:b.m4a] pic [IMG:c.jpg]", nil)
	if err != nil {
		t.Fatal(err)
	}

	items, err := svc.ListDay(ctx, testDay)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d", len(items))
	}
	want := []string{"IMG", "AUD"}
	got := items[0].TokenTypes
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("token types = %v, want %v", got, want)
	}
}

func TestMonthAndYearCounts(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	days := []time.Time{
		testDay,
		testDay,
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
	}
	for _, d := range days {
		if _, err := svc.CreateEntry(ctx, d, "E", "", "x", nil); err != nil {
			t.Fatal(err)
		}
	}

	month, err := svc.MonthCounts(ctx, 2026, time.August)
	if err != nil {
		t.Fatal(err)
	}
	if month[20260831] != 2 || month[20260801] != 1 || len(month) != 2 {
		t.Errorf("month counts = %v", month)
	}

	year, err := svc.YearCounts(ctx, 2026)
	if err != nil {
		t.Fatal(err)
	}
	if year[20260102] != 1 || len(year) != 3 {
		t.Errorf("year counts = %v", year)
	}
}

func TestInsertToken_PersistsAndReturnsCursor(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, testDay, "T", "", "I was here", nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.InsertToken(ctx, created.Path, "MAP", "50.1,14.4|Home", 10, 10)
	if err != nil {
		t.Fatalf("InsertToken: %v", err)
	}
	want := "I was here [MAP:50.1,14.4|Home]"
	if res.Entry.Text != want {
		t.Errorf("text = %q, want %q", res.Entry.Text, want)
	}
	if res.Cursor != len(want) {
		t.Errorf("cursor = %d, want %d", res.Cursor, len(want))
	}

	// Change must be durable.
	got, err := svc.GetEntry(ctx, created.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != want {
		t.Errorf("persisted text = %q", got.Text)
	}
}

func TestInsertToken_UnknownType(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, testDay, "T", "", "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.InsertToken(ctx, created.Path, "VID", "clip.mp4", 0, 0); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestInsertToken_SelectionInsideTokenSnapsToBoundaries(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, testDay, "T", "", "a [IMG:x] b", nil)
	if err != nil {
		t.Fatal(err)
	}

	// A stale client selection landing inside the existing token must be
	// snapped to its boundaries, replacing the token whole rather than
	// splitting it.
	res, err := svc.InsertToken(ctx, created.Path, "DET", "p", 4, 6)
	if err != nil {
		t.Fatalf("InsertToken: %v", err)
	}
	want := "a [DET:p] b"
	if res.Entry.Text != want {
		t.Errorf("text = %q, want %q", res.Entry.Text, want)
	}
	if res.Cursor != len("a [DET:p]") {
		t.Errorf("cursor = %d, want %d", res.Cursor, len("a [DET:p]"))
	}
	if n := len(tokentext.Tokens(res.Entry.Text)); n != 1 {
		t.Errorf("token count = %d, want 1", n)
	}
}

func TestApplyTextEdit_DeletionRemovesWholeToken(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, testDay, "T", "", "Hello [IMG:pic.jpg] world", nil)
	if err != nil {
		t.Fatal(err)
	}

	// Backspace on the closing bracket.
	res, err := svc.ApplyTextEdit(ctx, created.Path, "Hello [IMG:pic.jpg world", 18, 1, 0)
	if err != nil {
		t.Fatalf("ApplyTextEdit: %v", err)
	}
	if res.Entry.Text != "Hello  world" {
		t.Errorf("text = %q, want %q", res.Entry.Text, "Hello  world")
	}
	if res.Cursor != 6 {
		t.Errorf("cursor = %d, want 6", res.Cursor)
	}

	// Index must reflect the removed token.
	items, err := svc.ListDay(ctx, testDay)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || len(items[0].TokenTypes) != 0 {
		t.Errorf("token types after deletion = %v", items[0].TokenTypes)
	}
}

func TestApplyTextEdit_DeletionReindexesDetailLinks(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, testDay, "T", "", "did [DET:exercise] today", nil)
	if err != nil {
		t.Fatal(err)
	}

	paths, err := svc.DetailEntries(ctx, "exercise")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("detail links before = %v", paths)
	}

	// Delete one character inside the token; the whole token goes with it.
	if _, err := svc.ApplyTextEdit(ctx, created.Path, "did [DET:exercis] today", 15, 1, 0); err != nil {
		t.Fatal(err)
	}

	paths, err = svc.DetailEntries(ctx, "exercise")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("detail links after = %v", paths)
	}
}

func TestRender_PlayingAudio(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateEntry(ctx, testDay, "T", "", "note [AUD:memo.m4a] end", nil)
	if err != nil {
		t.Fatal(err)
	}

	items, err := svc.Render(ctx, created.Path, "memo.m4a")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d", len(items))
	}
	if items[1].Icon != "pause" {
		t.Errorf("icon = %q, want pause", items[1].Icon)
	}

	items, err = svc.Render(ctx, created.Path, "")
	if err != nil {
		t.Fatal(err)
	}
	if items[1].Icon != "play" {
		t.Errorf("icon = %q, want play", items[1].Icon)
	}
}

func TestSearch_FindsBody(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateEntry(ctx, testDay, "Find me", "", "uniquetoken here", nil); err != nil {
		t.Fatal(err)
	}

	results, err := svc.Search(ctx, "uniquetoken", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
}
