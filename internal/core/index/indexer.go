package index

import (
	"fmt"
	"os"

	"github.com/pmorrell/ccscope/internal/core/convlog"
	"github.com/pmorrell/ccscope/internal/core/discover"
)

// Indexer writes parsed conversations into the index.
type Indexer struct {
	db     *DB
	parser *convlog.Parser
}

// NewIndexer creates an indexer. parser may be nil for default pricing.
func NewIndexer(db *DB, parser *convlog.Parser) *Indexer {
	if parser == nil {
		parser = &convlog.Parser{}
	}
	return &Indexer{db: db, parser: parser}
}

// SyncStats reports what one sync pass did.
type SyncStats struct {
	Indexed int
	Skipped int
	Failed  int
}

// SyncRoot incrementally indexes every conversation under the projects
// root. Files whose size and mtime are unchanged since the last pass are
// skipped; parse failures are warned and skipped, never fatal.
func (ix *Indexer) SyncRoot(root string) (SyncStats, error) {
	var stats SyncStats

	projects, err := discover.Projects(root)
	if err != nil {
		return stats, err
	}

	for _, project := range projects {
		for _, file := range project.Conversations {
			fresh, err := ix.isFresh(file)
			if err != nil {
				return stats, err
			}
			if fresh {
				stats.Skipped++
				continue
			}

			conv, err := ix.parser.ParseFile(file.Path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to parse %s: %v\n", file.Path, err)
				stats.Failed++
				continue
			}
			if err := ix.Put(conv, file.Size); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to index %s: %v\n", file.Path, err)
				stats.Failed++
				continue
			}
			stats.Indexed++
		}
	}
	return stats, nil
}

// isFresh reports whether the indexed copy still matches the file on disk.
// Conversation logs are append-only, so an unchanged size means unchanged
// content.
func (ix *Indexer) isFresh(file discover.ConversationFile) (bool, error) {
	var size int64
	err := ix.db.conn.QueryRow(`
		SELECT file_size FROM conversations WHERE session_id = ?
	`, file.SessionID).Scan(&size)
	if err != nil {
		return false, nil // not indexed yet (or unreadable row: reindex)
	}
	return size == file.Size, nil
}

// Put replaces the indexed copy of one conversation.
func (ix *Indexer) Put(conv *convlog.Conversation, fileSize int64) error {
	tx, err := ix.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	meta := conv.Metadata

	var totalCost float64
	for _, msg := range conv.Messages {
		if msg.Usage != nil {
			totalCost += msg.Usage.CostUSD
		}
	}

	// Replace wholesale: conversations are append-only files, so a changed
	// file means new trailing lines and a full rewrite is simplest
	_, err = tx.Exec(`DELETE FROM conversations WHERE session_id = ?`, meta.SessionID)
	if err != nil {
		return fmt.Errorf("failed to clear previous copy: %w", err)
	}

	result, err := tx.Exec(`
		INSERT INTO conversations (
			session_id, project_name, project_path, git_branch,
			started_at, ended_at, message_count, malformed_lines,
			total_cost_usd, file_path, file_size, file_mtime
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.SessionID, meta.ProjectName, meta.ProjectPath, meta.GitBranch,
		meta.StartedAt, meta.EndedAt, meta.MessageCount, meta.MalformedLines,
		totalCost, meta.FilePath, fileSize, meta.FileMtime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	convID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get conversation id: %w", err)
	}

	for _, msg := range conv.Messages {
		var inputTokens, outputTokens, cacheCreation, cacheRead int
		var cost float64
		if msg.Usage != nil {
			inputTokens = msg.Usage.InputTokens
			outputTokens = msg.Usage.OutputTokens
			cacheCreation = msg.Usage.CacheCreationTokens
			cacheRead = msg.Usage.CacheReadTokens
			cost = msg.Usage.CostUSD
		}

		var toolName, resultFor string
		if len(msg.ToolCalls) > 0 {
			toolName = msg.ToolCalls[0].Name
		}
		if msg.ToolResult != nil {
			resultFor = msg.ToolResult.ToolUseID
		}

		_, err = tx.Exec(`
			INSERT INTO messages (
				conversation_id, seq, uuid, role, display_text, timestamp,
				model, input_tokens, output_tokens, cache_creation_tokens,
				cache_read_tokens, cost_usd, tool_name, result_for
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			convID, msg.Index, msg.UUID, string(msg.Role), msg.Text, msg.Timestamp,
			msg.Model, inputTokens, outputTokens, cacheCreation,
			cacheRead, cost, toolName, resultFor,
		)
		if err != nil {
			return fmt.Errorf("failed to insert message %d: %w", msg.Index, err)
		}
	}

	return tx.Commit()
}
