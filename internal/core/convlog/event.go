package convlog

import (
	"encoding/json"
	"time"
)

// Role is the normalized role of a message, derived once during parsing.
// RoleTool is never present verbatim in the log; it is assigned when a
// user-tagged event turns out to carry a tool result.
type Role string

const (
	RoleUser        Role = "user"
	RoleAssistant   Role = "assistant"
	RoleTool        Role = "tool"
	RoleSummary     Role = "summary"
	RoleFileHistory Role = "file-history"
)

// BlockKind identifies a content block variant within a message.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockThinking   BlockKind = "thinking"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
	BlockUnknown    BlockKind = "unknown"
)

// ContentBlock is one typed unit of structured message content. Unrecognized
// block types decode as BlockUnknown and are carried through untouched.
type ContentBlock struct {
	Kind      BlockKind
	Text      string          // text and thinking blocks
	ID        string          // tool_use call id
	Name      string          // tool_use tool name
	Input     json.RawMessage // tool_use input parameters
	ToolUseID string          // tool_result: the call id it answers
	Payload   json.RawMessage // tool_result inline payload
}

// rawEvent is one decoded JSONL line. Fields vary by event type; absent
// fields stay zero-valued.
type rawEvent struct {
	Type          string          `json:"type"`
	Summary       string          `json:"summary,omitempty"`
	LeafUUID      string          `json:"leafUuid,omitempty"`
	UUID          string          `json:"uuid,omitempty"`
	ParentUUID    string          `json:"parentUuid,omitempty"`
	SessionID     string          `json:"sessionId,omitempty"`
	Message       json.RawMessage `json:"message,omitempty"`
	Timestamp     string          `json:"timestamp,omitempty"`
	ToolUseResult json.RawMessage `json:"toolUseResult,omitempty"`
	IsMeta        bool            `json:"isMeta,omitempty"`
	IsSidechain   bool            `json:"isSidechain,omitempty"`
	CWD           string          `json:"cwd,omitempty"`
	GitBranch     string          `json:"gitBranch,omitempty"`
	Version       string          `json:"version,omitempty"`
}

// rawInnerMessage is the nested message object on user/assistant events.
type rawInnerMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model,omitempty"`
	Content json.RawMessage `json:"content"`
	Usage   *rawUsage       `json:"usage,omitempty"`
}

// rawUsage is the vendor-reported token usage on assistant messages.
type rawUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// rawBlock mirrors the wire shape of a content block. The tool_result
// payload can be a string or a nested block list, so it stays raw.
type rawBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
}

// ToolCall is an outgoing tool invocation emitted by an assistant message.
// ResultIndex points at the message carrying the matched result, or -1 when
// the result never arrived (truncated logs are legal).
type ToolCall struct {
	ID          string
	Name        string
	Input       json.RawMessage
	ResultIndex int
}

// ToolResult is an incoming tool outcome. CallIndex points at the message
// that emitted the call, or -1 when no matching call was seen.
type ToolResult struct {
	ToolUseID string
	Payload   json.RawMessage
	CallIndex int
}

// Message is one normalized conversation record. Index values form a dense
// 0-based sequence in file order. A message carries tool calls or a tool
// result, never both.
type Message struct {
	Index      int
	UUID       string
	ParentUUID string
	Role       Role
	Text       string
	Timestamp  time.Time
	Model      string
	ToolCalls  []ToolCall
	ToolResult *ToolResult
	Usage      *Usage
	IsMeta     bool
}

// Metadata describes one conversation file. Computed once per parse and
// immutable afterwards.
type Metadata struct {
	ProjectName    string
	ProjectPath    string
	SessionID      string
	GitBranch      string
	WorkingDir     string
	Version        string
	StartedAt      time.Time
	EndedAt        time.Time
	MessageCount   int
	MalformedLines int
	Warnings       []string
	FilePath       string
	FileMtime      time.Time

	sessionFromEvent bool
}
