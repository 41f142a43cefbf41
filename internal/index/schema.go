// Package index provides SQLite-backed entry indexing: calendar count
// aggregates, detail backlinks derived from DET tokens, and optional
// FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	path        TEXT PRIMARY KEY,
	id          TEXT NOT NULL DEFAULT '',
	day_key     INTEGER NOT NULL DEFAULT 0,
	title       TEXT NOT NULL DEFAULT '',
	mood        TEXT NOT NULL DEFAULT '',
	checksum    TEXT NOT NULL DEFAULT '',
	token_types TEXT NOT NULL DEFAULT '[]',
	details     TEXT NOT NULL DEFAULT '[]',
	body        TEXT NOT NULL DEFAULT '',
	created_at  DATETIME,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_entries_day_key ON entries(day_key);
CREATE INDEX IF NOT EXISTS idx_entries_id ON entries(id);

CREATE TABLE IF NOT EXISTS detail_links (
	source  TEXT NOT NULL,
	item_id TEXT NOT NULL,
	UNIQUE(source, item_id)
);

CREATE INDEX IF NOT EXISTS idx_detail_links_source ON detail_links(source);
CREATE INDEX IF NOT EXISTS idx_detail_links_item ON detail_links(item_id);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
