package mcpserver

import (
	"context"
	"encoding/base64"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/veleth/dagaz/internal/entryservice"
	"github.com/veleth/dagaz/internal/index"
	"github.com/veleth/dagaz/internal/storage"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	journalDir := t.TempDir()
	store, err := storage.NewFS(journalDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "dagaz-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	svc := entryservice.NewService(store, db)
	srv := New(svc, store)
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_entries":
		result, err = srv.searchEntries(ctx, req)
	case "read_entry":
		result, err = srv.readEntry(ctx, req)
	case "create_entry":
		result, err = srv.createEntry(ctx, req)
	case "list_day":
		result, err = srv.listDay(ctx, req)
	case "insert_token":
		result, err = srv.insertToken(ctx, req)
	case "get_token_contract":
		result, err = srv.getTokenContract(ctx, req)
	case "upload_media":
		result, err = srv.uploadMedia(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// createdPath extracts the entry path from a create_entry result.
func createdPath(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	text := resultText(r)
	if !strings.HasPrefix(text, "created: ") {
		t.Fatalf("create result = %q", text)
	}
	return strings.TrimPrefix(text, "created: ")
}

func TestCreateAndReadEntry(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]interface{}{
		"date":  "2026-08-31",
		"title": "Morning walk",
		"text":  "by the river [IMG:river.jpg]",
	})
	path := createdPath(t, r)
	if !strings.HasPrefix(path, "2026/08/31/") {
		t.Errorf("path = %q", path)
	}

	r = callTool(t, srv, "read_entry", map[string]interface{}{"path": path})
	text := resultText(r)
	if !strings.Contains(text, "by the river [IMG:river.jpg]") {
		t.Errorf("read result = %q", text)
	}
	if !strings.Contains(text, "Morning walk") {
		t.Errorf("read result missing title: %q", text)
	}
}

func TestListDay(t *testing.T) {
	srv, _ := testServer(t)

	for _, title := range []string{"One", "Two"} {
		callTool(t, srv, "create_entry", map[string]interface{}{
			"date":  "2026-08-31",
			"title": title,
			"text":  "x",
		})
	}

	r := callTool(t, srv, "list_day", map[string]interface{}{"date": "2026-08-31"})
	text := resultText(r)
	if !strings.Contains(text, "One") || !strings.Contains(text, "Two") {
		t.Errorf("list result = %q", text)
	}
}

func TestReadEntryMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_entry", map[string]interface{}{"path": "2026/01/01/nope.md"})
	if !r.IsError {
		t.Error("expected error for missing entry")
	}
}

func TestInsertTokenAppendsAtEnd(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]interface{}{
		"date":  "2026-08-31",
		"title": "T",
		"text":  "I was here",
	})
	path := createdPath(t, r)

	r = callTool(t, srv, "insert_token", map[string]interface{}{
		"path":    path,
		"type":    "MAP",
		"payload": "50.1,14.4|Home",
	})
	text := resultText(r)
	if text != "I was here [MAP:50.1,14.4|Home]" {
		t.Errorf("body after insert = %q", text)
	}
}

func TestInsertToken_UnknownType(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]interface{}{
		"date":  "2026-08-31",
		"title": "T",
		"text":  "x",
	})
	path := createdPath(t, r)

	r = callTool(t, srv, "insert_token", map[string]interface{}{
		"path":    path,
		"type":    "VID",
		"payload": "clip.mp4",
	})
	if !r.IsError {
		t.Error("expected error for unknown token type")
	}
}

func TestSearchEntries(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "create_entry", map[string]interface{}{
		"date":  "2026-08-31",
		"title": "Find me",
		"text":  "uniquetoken here",
	})

	r := callTool(t, srv, "search_entries", map[string]interface{}{"query": "uniquetoken"})
	if !strings.Contains(resultText(r), "Find me") {
		t.Errorf("search result = %q", resultText(r))
	}
}

func TestTokenContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_token_contract", nil)
	text := resultText(r)
	if !strings.Contains(text, "[TYPE:payload]") {
		t.Errorf("contract missing grammar: %q", text)
	}
}

func TestUploadMedia_DataURI(t *testing.T) {
	srv, store := testServer(t)

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 16)...)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	r := callTool(t, srv, "upload_media", map[string]interface{}{
		"url":      uri,
		"filename": "pic.png",
	})
	text := resultText(r)
	if r.IsError {
		t.Fatalf("upload failed: %q", text)
	}
	if !strings.Contains(text, "[IMG:pic.png]") {
		t.Errorf("upload result = %q", text)
	}
	if _, err := store.Read("media/pic.png"); err != nil {
		t.Errorf("media file not stored: %v", err)
	}
}

func TestUploadMedia_BadExtension(t *testing.T) {
	srv, _ := testServer(t)

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("x"))
	r := callTool(t, srv, "upload_media", map[string]interface{}{
		"url":      uri,
		"filename": "evil.exe",
	})
	if !r.IsError {
		t.Error("expected error for disallowed extension")
	}
}
