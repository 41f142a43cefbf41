// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dagaz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/veleth/dagaz/internal/entryservice"
	"github.com/veleth/dagaz/internal/storage"
	"github.com/veleth/dagaz/internal/tokentext"
)

// Server wraps the MCP server with Dagaz tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *entryservice.Service
	store storage.Provider
}

// New creates a new MCP server with all Dagaz tools registered.
func New(svc *entryservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through journal entry bodies and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read a journal entry including its raw token text."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Entry path (e.g. 2026/08/31/id.md)")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a new journal entry for a given day. "+
			"The text body may embed inline tokens in the canonical [TYPE:payload] "+
			"format. Read the contract first via the get_token_contract tool or the "+
			"dagaz://token-format resource."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Entry day, YYYY-MM-DD")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Entry title")),
		mcp.WithString("mood", mcp.Description("Optional mood label")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Body text, may contain inline tokens")),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("get_token_contract",
		mcp.WithDescription("Returns the canonical Dagaz inline token format contract. "+
			"Call this before writing entry bodies to ensure correct token structure."),
	), s.getTokenContract)

	s.mcp.AddTool(mcp.NewTool("list_day",
		mcp.WithDescription("List journal entries for a calendar day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day to list, YYYY-MM-DD")),
	), s.listDay)

	s.mcp.AddTool(mcp.NewTool("insert_token",
		mcp.WithDescription("Insert an inline token into an existing entry body with "+
			"automatic whitespace normalization."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Entry path")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Token type: IMG, AUD, MAP, DET or MUS")),
		mcp.WithString("payload", mcp.Required(), mcp.Description("Token payload")),
		mcp.WithNumber("position", mcp.Description("Caret position in the body (defaults to end)")),
	), s.insertToken)

	s.mcp.AddTool(mcp.NewTool("upload_media",
		mcp.WithDescription("Upload a photo or audio file into the journal media store. "+
			"Accepts an http(s) URL or a base64 data URI. Returns the [IMG:...] or "+
			"[AUD:...] token to embed in an entry body."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Source URL or data URI")),
		mcp.WithString("filename", mcp.Description("Optional target filename")),
	), s.uploadMedia)

	// Resource: token format contract.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://token-format", "Token Format Contract",
			mcp.WithResourceDescription("Canonical inline token format that all entry bodies must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTokenFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.GetEntry(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(entry, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mood := ""
	if v, mErr := req.RequireString("mood"); mErr == nil {
		mood = v
	}

	at, err := time.Parse("2006-01-02", date)
	if err != nil {
		return mcp.NewToolResultError("date must be YYYY-MM-DD"), nil
	}

	entry, err := s.svc.CreateEntry(ctx, at, title, mood, text, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", entry.Path)), nil
}

func (s *Server) listDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return mcp.NewToolResultError("date must be YYYY-MM-DD"), nil
	}

	items, err := s.svc.ListDay(ctx, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) insertToken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := req.RequireString("payload")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pos := -1
	if v, pErr := req.RequireFloat("position"); pErr == nil {
		pos = int(v)
	}
	if pos < 0 {
		entry, gErr := s.svc.GetEntry(ctx, path)
		if gErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		pos = len(entry.Text)
	}

	res, err := s.svc.InsertToken(ctx, path, tokentext.TokenType(typ), payload, pos, pos)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(res.Entry.Text), nil
}

func (s *Server) getTokenContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TokenFormatContract), nil
}

func (s *Server) readTokenFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://token-format",
			MIMEType: "text/markdown",
			Text:     TokenFormatContract,
		},
	}, nil
}
