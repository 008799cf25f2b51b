package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pmorrell/ccscope/internal/core/convlog"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func writeSession(t *testing.T, root, project, session, content string) string {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, session+".jsonl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sessionContent = `{"type":"user","uuid":"u1","sessionId":"sess-1","timestamp":"2025-03-01T09:00:00Z","message":{"role":"user","content":"please fix the flaky timeout"}}
{"type":"assistant","uuid":"a1","timestamp":"2025-03-01T09:00:10Z","message":{"role":"assistant","model":"claude-sonnet-4-5","content":[{"type":"text","text":"bumped the timeout"}],"usage":{"input_tokens":100,"output_tokens":50}}}
`

func TestSyncRootAndSearch(t *testing.T) {
	root := t.TempDir()
	writeSession(t, root, "-Users-anna-src-widget", "sess-1", sessionContent)

	db := openTestDB(t)
	ix := NewIndexer(db, nil)

	stats, err := ix.SyncRoot(root)
	if err != nil {
		t.Fatalf("SyncRoot() error = %v", err)
	}
	if stats.Indexed != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 1 indexed", stats)
	}

	// Second pass skips the unchanged file
	stats, err = ix.SyncRoot(root)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 1 || stats.Indexed != 0 {
		t.Errorf("incremental stats = %+v, want 1 skipped", stats)
	}

	results, err := db.Search("timeout", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("result count = %d, want 2", len(results))
	}
	if results[0].SessionID != "sess-1" {
		t.Errorf("SessionID = %q", results[0].SessionID)
	}
}

func TestPut_ReplacesExisting(t *testing.T) {
	db := openTestDB(t)
	ix := NewIndexer(db, nil)

	conv := &convlog.Conversation{
		Metadata: convlog.Metadata{SessionID: "sess-1", ProjectPath: "/p", MessageCount: 1},
		Messages: []convlog.Message{{Index: 0, Role: convlog.RoleUser, Text: "one"}},
	}
	if err := ix.Put(conv, 10); err != nil {
		t.Fatal(err)
	}

	conv.Messages = append(conv.Messages, convlog.Message{Index: 1, Role: convlog.RoleAssistant, Text: "two"})
	conv.Metadata.MessageCount = 2
	if err := ix.Put(conv, 20); err != nil {
		t.Fatal(err)
	}

	var convCount, msgCount int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&convCount); err != nil {
		t.Fatal(err)
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM messages").Scan(&msgCount); err != nil {
		t.Fatal(err)
	}
	if convCount != 1 {
		t.Errorf("conversation count = %d, want 1", convCount)
	}
	if msgCount != 2 {
		t.Errorf("message count = %d, want 2", msgCount)
	}
}

func TestListConversations(t *testing.T) {
	db := openTestDB(t)
	ix := NewIndexer(db, nil)

	conv := &convlog.Conversation{
		Metadata: convlog.Metadata{
			SessionID:   "sess-1",
			ProjectName: "widget",
			ProjectPath: "/Users/anna/src/widget",
		},
		Messages: []convlog.Message{
			{Index: 0, Role: convlog.RoleAssistant, Text: "hi",
				Usage: &convlog.Usage{OutputTokens: 10, CostUSD: 0.01}},
		},
	}
	if err := ix.Put(conv, 1); err != nil {
		t.Fatal(err)
	}

	rows, err := db.ListConversations("widget", 10)
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row count = %d", len(rows))
	}
	if rows[0].TotalCostUSD != 0.01 {
		t.Errorf("TotalCostUSD = %v", rows[0].TotalCostUSD)
	}

	rows, err = db.ListConversations("other-project", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("filtered row count = %d, want 0", len(rows))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Search("  ", 10); err == nil {
		t.Error("Search() should reject an empty query")
	}
}
