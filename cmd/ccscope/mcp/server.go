// Package mcp exposes the conversation history to assistants over the
// Model Context Protocol. Search goes through the sqlite index, which is
// refreshed before every query so results stay current.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pmorrell/ccscope/internal/core/convlog"
	"github.com/pmorrell/ccscope/internal/core/discover"
	"github.com/pmorrell/ccscope/internal/core/index"
)

// SearchConversationsArgs defines arguments for the search_conversations tool
type SearchConversationsArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// GetConversationArgs defines arguments for the get_conversation tool
type GetConversationArgs struct {
	SessionID   string `json:"session_id"`
	IncludeTool bool   `json:"include_tool,omitempty"`
}

// ListProjectsArgs defines arguments for the list_projects tool
type ListProjectsArgs struct {
	Limit int `json:"limit,omitempty"`
}

// SearchHit is one match returned to the assistant
type SearchHit struct {
	SessionID string `json:"session_id"`
	Project   string `json:"project"`
	Role      string `json:"role"`
	Sequence  int    `json:"sequence"`
	Timestamp string `json:"timestamp"`
	Snippet   string `json:"snippet"`
}

// MessageDetail is one normalized message in a transcript
type MessageDetail struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
	Sequence  int    `json:"sequence"`
}

// ProjectInfo is one project in the list view
type ProjectInfo struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	Conversations int    `json:"conversations"`
	LastActive    string `json:"last_active"`
}

// StartServer starts the MCP server on stdio.
func StartServer(projectsRoot, indexPath string, prices *convlog.PriceTable) error {
	db, err := index.Open(indexPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Error closing index: %v", closeErr)
		}
	}()

	parser := &convlog.Parser{Prices: prices}

	s := server.NewMCPServer(
		"ccscope",
		"1.0.0",
	)

	searchTool := mcp.NewTool("search_conversations",
		mcp.WithDescription("Full-text search across all Claude Code conversation transcripts. Returns matching messages with snippets."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term to match against message content")),
		mcp.WithNumber("limit",
			mcp.Description("Max number of matches to return (default: 20)")),
	)
	s.AddTool(searchTool, makeSearchHandler(db, parser, projectsRoot))

	getTool := mcp.NewTool("get_conversation",
		mcp.WithDescription("Retrieve the full normalized transcript of one conversation by session id (unique prefixes accepted)"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session UUID or unique prefix")),
		mcp.WithBoolean("include_tool",
			mcp.Description("Include tool result messages (default: false)")),
	)
	s.AddTool(getTool, makeGetConversationHandler(parser, projectsRoot))

	listTool := mcp.NewTool("list_projects",
		mcp.WithDescription("List projects that have Claude Code conversation logs, most recently active first"),
		mcp.WithNumber("limit",
			mcp.Description("Max projects to return (default: 20)")),
	)
	s.AddTool(listTool, makeListProjectsHandler(projectsRoot))

	return server.ServeStdio(s)
}

// syncIndex refreshes the index before a query (fast incremental check)
func syncIndex(db *index.DB, parser *convlog.Parser, root string) error {
	_, err := index.NewIndexer(db, parser).SyncRoot(root)
	return err
}

func decodeArgs(request mcp.CallToolRequest, v interface{}) error {
	argsBytes, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return fmt.Errorf("unmarshalable arguments: %w", err)
	}
	return json.Unmarshal(argsBytes, v)
}

func makeSearchHandler(db *index.DB, parser *convlog.Parser, root string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := syncIndex(db, parser, root); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
		}

		var args SearchConversationsArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 20
		}

		results, err := db.Search(args.Query, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		hits := make([]SearchHit, 0, len(results))
		for _, r := range results {
			hits = append(hits, SearchHit{
				SessionID: r.SessionID,
				Project:   r.ProjectPath,
				Role:      r.Role,
				Sequence:  r.Seq,
				Timestamp: r.Timestamp,
				Snippet:   r.Snippet,
			})
		}

		resultJSON, err := json.Marshal(map[string]interface{}{"matches": hits})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeGetConversationHandler(parser *convlog.Parser, root string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetConversationArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.SessionID == "" {
			return mcp.NewToolResultError("session_id is required"), nil
		}

		file, err := discover.FindConversation(root, args.SessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		conv, err := parser.ParseFile(file.Path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse conversation: %v", err)), nil
		}

		var messages []MessageDetail
		for _, msg := range conv.Messages {
			if msg.Role == convlog.RoleTool && !args.IncludeTool {
				continue
			}
			detail := MessageDetail{
				Role:     string(msg.Role),
				Content:  msg.Text,
				Sequence: msg.Index,
			}
			if !msg.Timestamp.IsZero() {
				detail.Timestamp = msg.Timestamp.Format("2006-01-02T15:04:05Z07:00")
			}
			messages = append(messages, detail)
		}

		resultJSON, err := json.Marshal(map[string]interface{}{
			"session_id":    conv.Metadata.SessionID,
			"project":       conv.Metadata.ProjectPath,
			"git_branch":    conv.Metadata.GitBranch,
			"message_count": conv.Metadata.MessageCount,
			"messages":      messages,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeListProjectsHandler(root string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListProjectsArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 20
		}

		projects, err := discover.Projects(root)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list projects: %v", err)), nil
		}

		infos := make([]ProjectInfo, 0, limit)
		for _, p := range projects {
			if len(infos) >= limit {
				break
			}
			infos = append(infos, ProjectInfo{
				Name:          p.Name,
				Path:          p.Path,
				Conversations: len(p.Conversations),
				LastActive:    p.Conversations[0].Mtime.Format("2006-01-02T15:04:05Z07:00"),
			})
		}

		resultJSON, err := json.Marshal(map[string]interface{}{"projects": infos})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}
