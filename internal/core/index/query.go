package index

import (
	"fmt"
	"strings"
)

// Result is one FTS hit.
type Result struct {
	SessionID   string
	ProjectPath string
	Role        string
	Seq         int
	Timestamp   string
	Snippet     string
}

// ConversationRow is one indexed conversation in list output.
type ConversationRow struct {
	SessionID    string
	ProjectName  string
	ProjectPath  string
	GitBranch    string
	StartedAt    string
	EndedAt      string
	MessageCount int
	TotalCostUSD float64
	FilePath     string
}

// Search runs a full-text query over indexed display text. Queries with
// FTS-hostile characters fall back to substring matching.
func (db *DB) Search(query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 {
		limit = 100
	}

	var sqlText string
	if strings.ContainsAny(query, "-_@#$%&\"") {
		sqlText = `
			SELECT c.session_id, c.project_path, m.role, m.seq, m.timestamp,
				substr(m.display_text, 1, 200)
			FROM messages m
			JOIN conversations c ON c.id = m.conversation_id
			WHERE m.display_text LIKE '%' || ? || '%'
			ORDER BY m.timestamp DESC
			LIMIT ?`
	} else {
		sqlText = `
			SELECT c.session_id, c.project_path, m.role, m.seq, m.timestamp,
				snippet(messages_fts, -1, '', '', '...', 32)
			FROM messages_fts
			JOIN messages m ON messages_fts.rowid = m.id
			JOIN conversations c ON c.id = m.conversation_id
			WHERE messages_fts MATCH ?
			ORDER BY m.timestamp DESC
			LIMIT ?`
	}

	rows, err := db.conn.Query(sqlText, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.SessionID, &r.ProjectPath, &r.Role, &r.Seq, &r.Timestamp, &r.Snippet); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListConversations returns indexed conversations, most recent first,
// optionally filtered by project path substring.
func (db *DB) ListConversations(project string, limit int) ([]ConversationRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT session_id, project_name, project_path, COALESCE(git_branch, ''),
			COALESCE(started_at, ''), COALESCE(ended_at, ''), message_count,
			total_cost_usd, file_path
		FROM conversations
		WHERE project_path LIKE '%' || ? || '%'
		ORDER BY ended_at DESC
		LIMIT ?
	`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ConversationRow
	for rows.Next() {
		var c ConversationRow
		if err := rows.Scan(&c.SessionID, &c.ProjectName, &c.ProjectPath, &c.GitBranch,
			&c.StartedAt, &c.EndedAt, &c.MessageCount, &c.TotalCostUSD, &c.FilePath); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
