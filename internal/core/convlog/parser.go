package convlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Conversation is the result of parsing one JSONL log file: file-level
// metadata plus the ordered normalized messages. Both are owned by the
// caller once returned; the parser keeps no state between calls, so
// separate files may be parsed concurrently.
type Conversation struct {
	Metadata Metadata
	Messages []Message
}

// Parser normalizes conversation log files. The zero value uses the
// default price table.
type Parser struct {
	Prices *PriceTable
}

// ParseFile parses a conversation log with the default price table.
func ParseFile(path string) (*Conversation, error) {
	return (&Parser{}).ParseFile(path)
}

// ParseFile reads and normalizes one conversation file. Only I/O failures
// and files with no decodable lines are errors; individual malformed lines
// are skipped and counted.
func (p *Parser) ParseFile(path string) (conv *Conversation, err error) {
	file, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open file: %w", ferr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return p.Parse(file, path, info.ModTime())
}

// Parse normalizes an ordered stream of JSONL lines. filePath is used for
// metadata derivation (project path, session id) and fileMtime is the
// last-resort timestamp fallback.
func (p *Parser) Parse(r io.Reader, filePath string, fileMtime time.Time) (*Conversation, error) {
	meta := Metadata{
		FilePath:  filePath,
		FileMtime: fileMtime,
	}
	if filePath != "" {
		meta.ProjectPath = decodeProjectPath(filePath)
		meta.ProjectName = filepath.Base(meta.ProjectPath)
		meta.SessionID = sessionIDFromPath(filePath)
	}

	var messages []Message
	callOrigin := map[string]callRef{}

	// Long tool results produce very long lines
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	decoded := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ev rawEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			meta.MalformedLines++
			continue
		}
		decoded++

		msg := p.buildMessage(&ev, len(messages))
		p.fillMetadata(&meta, &ev)
		linkToolUses(messages, &msg, callOrigin)
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading conversation: %w", err)
	}

	if decoded == 0 {
		return nil, fmt.Errorf("no valid events in %s", filePath)
	}

	resolveTimestamps(messages, fileMtime, &meta)

	meta.MessageCount = len(messages)
	for _, m := range messages {
		if m.Timestamp.IsZero() {
			continue
		}
		if meta.StartedAt.IsZero() || m.Timestamp.Before(meta.StartedAt) {
			meta.StartedAt = m.Timestamp
		}
		if m.Timestamp.After(meta.EndedAt) {
			meta.EndedAt = m.Timestamp
		}
	}

	return &Conversation{Metadata: meta, Messages: messages}, nil
}

// callRef locates a pending tool call: the message that emitted it and the
// call's position within that message.
type callRef struct {
	msgIndex  int
	callIndex int
}

// buildMessage normalizes one decoded event into a provisional message.
// Timestamps may still be zero here; the backfill pass runs once the whole
// stream is known.
func (p *Parser) buildMessage(ev *rawEvent, index int) Message {
	msg := Message{
		Index:      index,
		UUID:       ev.UUID,
		ParentUUID: ev.ParentUUID,
		IsMeta:     ev.IsMeta,
	}
	if ts, ok := parseTimestamp(ev.Timestamp); ok {
		msg.Timestamp = ts
	}

	if ev.Type == "summary" {
		msg.Role = RoleSummary
		msg.Text = ev.Summary
		if msg.UUID == "" {
			msg.UUID = ev.LeafUUID
		}
		return msg
	}

	var inner *rawInnerMessage
	if len(ev.Message) > 0 {
		var im rawInnerMessage
		if err := json.Unmarshal(ev.Message, &im); err == nil {
			inner = &im
		}
	}

	declaredRole := ""
	if inner != nil {
		declaredRole = inner.Role
		msg.Model = inner.Model
	}

	text, calls, result := extractContent(ev, inner)
	msg.Text = text
	msg.Role = classify(ev, declaredRole, result != nil)

	// A message carries calls or a result, never both; results win since
	// the reclassification already marked this as a tool message
	if msg.Role == RoleTool {
		msg.ToolResult = result
	} else {
		msg.ToolCalls = calls
	}

	if msg.Role == RoleAssistant && inner != nil && inner.Usage != nil {
		u := Usage{
			InputTokens:         inner.Usage.InputTokens,
			OutputTokens:        inner.Usage.OutputTokens,
			CacheCreationTokens: inner.Usage.CacheCreationInputTokens,
			CacheReadTokens:     inner.Usage.CacheReadInputTokens,
		}
		u.CostUSD = p.Prices.Cost(msg.Model, u)
		msg.Usage = &u
	}

	return msg
}

// fillMetadata captures session-level fields from the first event that
// carries them. Branch and working directory are consistent within a
// conversation, so first wins.
func (p *Parser) fillMetadata(meta *Metadata, ev *rawEvent) {
	if !meta.sessionFromEvent && ev.SessionID != "" && ev.Type != "summary" {
		meta.SessionID = ev.SessionID
		meta.sessionFromEvent = true
	}
	if meta.GitBranch == "" && ev.GitBranch != "" {
		meta.GitBranch = ev.GitBranch
	}
	if meta.WorkingDir == "" && ev.CWD != "" {
		meta.WorkingDir = ev.CWD
	}
	if meta.Version == "" && ev.Version != "" {
		meta.Version = ev.Version
	}
}

// linkToolUses records emitted call ids and, when a tool result arrives,
// wires the call and result to each other by message index. Results with
// no matching prior call stay unlinked; that is legal (the call side may
// have been truncated away).
func linkToolUses(prior []Message, msg *Message, origin map[string]callRef) {
	for i, call := range msg.ToolCalls {
		if call.ID != "" {
			origin[call.ID] = callRef{msgIndex: msg.Index, callIndex: i}
		}
	}

	if msg.ToolResult == nil || msg.ToolResult.ToolUseID == "" {
		return
	}
	ref, ok := origin[msg.ToolResult.ToolUseID]
	if !ok {
		return
	}
	msg.ToolResult.CallIndex = ref.msgIndex
	prior[ref.msgIndex].ToolCalls[ref.callIndex].ResultIndex = msg.Index
}

// decodeProjectPath reconstructs the original filesystem path from a
// dash-encoded project directory, e.g.
// ~/.claude/projects/-Users-anna-src-widget/<session>.jsonl -> /Users/anna/src/widget
func decodeProjectPath(filePath string) string {
	dir := filepath.Dir(filePath)
	base := filepath.Base(dir)
	if len(base) > 0 && base[0] == '-' {
		return "/" + strings.ReplaceAll(base[1:], "-", "/")
	}
	return dir
}

func sessionIDFromPath(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
