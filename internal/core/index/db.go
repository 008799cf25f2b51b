// Package index maintains an optional sqlite cache of normalized
// conversations for fast full-text search. The parser itself never touches
// it; everything here can be rebuilt from the log files at any time.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite index database.
type DB struct {
	conn *sql.DB
}

// Open creates or opens the index and ensures the schema exists.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	// sqlite supports a single writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT UNIQUE NOT NULL,
		project_name TEXT,
		project_path TEXT NOT NULL,
		git_branch TEXT,
		started_at DATETIME,
		ended_at DATETIME,
		message_count INTEGER DEFAULT 0,
		malformed_lines INTEGER DEFAULT 0,
		total_cost_usd REAL DEFAULT 0,
		file_path TEXT NOT NULL,
		file_size INTEGER,
		file_mtime DATETIME,
		indexed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_project_path ON conversations(project_path);
	CREATE INDEX IF NOT EXISTS idx_conversations_ended_at ON conversations(ended_at);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		uuid TEXT,
		role TEXT NOT NULL,
		display_text TEXT,
		timestamp DATETIME,
		model TEXT,
		input_tokens INTEGER DEFAULT 0,
		output_tokens INTEGER DEFAULT 0,
		cache_creation_tokens INTEGER DEFAULT 0,
		cache_read_tokens INTEGER DEFAULT 0,
		cost_usd REAL DEFAULT 0,
		tool_name TEXT,
		result_for TEXT,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
		UNIQUE (conversation_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
	CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp);

	CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
		display_text,
		content=messages,
		content_rowid=id,
		tokenize='porter unicode61'
	);

	CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
		INSERT INTO messages_fts(rowid, display_text) VALUES (new.id, new.display_text);
	END;

	CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
		INSERT INTO messages_fts(messages_fts, rowid, display_text) VALUES ('delete', old.id, old.display_text);
	END;
	`
	_, err := db.conn.Exec(schema)
	return err
}
