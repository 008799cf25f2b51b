package convlog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeBlocks turns a message's content field into typed blocks. Content is
// either a plain string, an array of blocks, or a single block object; every
// other shape is treated as absent.
func decodeBlocks(content json.RawMessage) (plain string, blocks []ContentBlock, isPlain bool) {
	if len(content) == 0 {
		return "", nil, false
	}

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s, nil, true
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(content, &elems); err == nil {
		for _, elem := range elems {
			blocks = append(blocks, decodeBlock(elem))
		}
		return "", blocks, false
	}

	var single rawBlock
	if err := json.Unmarshal(content, &single); err == nil {
		return "", []ContentBlock{convertBlock(single)}, false
	}

	return "", nil, false
}

func decodeBlock(elem json.RawMessage) ContentBlock {
	// Bare strings appear inside older content arrays
	var s string
	if err := json.Unmarshal(elem, &s); err == nil {
		return ContentBlock{Kind: BlockText, Text: s}
	}

	var rb rawBlock
	if err := json.Unmarshal(elem, &rb); err != nil {
		return ContentBlock{Kind: BlockUnknown}
	}
	return convertBlock(rb)
}

func convertBlock(rb rawBlock) ContentBlock {
	switch rb.Type {
	case "text":
		return ContentBlock{Kind: BlockText, Text: rb.Text}
	case "thinking":
		return ContentBlock{Kind: BlockThinking, Text: rb.Thinking}
	case "tool_use":
		return ContentBlock{Kind: BlockToolUse, ID: rb.ID, Name: rb.Name, Input: rb.Input}
	case "tool_result":
		return ContentBlock{Kind: BlockToolResult, ToolUseID: rb.ToolUseID, Payload: rb.Content}
	default:
		// Unknown block types pass through opaquely; a nested content
		// field still contributes text (older log schemas nest blocks).
		if len(rb.Content) > 0 {
			text, nested, plain := decodeBlocks(rb.Content)
			if plain {
				return ContentBlock{Kind: BlockUnknown, Text: text}
			}
			return ContentBlock{Kind: BlockUnknown, Text: flattenText(nested)}
		}
		return ContentBlock{Kind: BlockUnknown}
	}
}

// flattenText joins the displayable blocks into one string. Text blocks
// appear verbatim, thinking blocks are wrapped so internal reasoning stays
// visually distinct, and tool traffic is excluded entirely.
func flattenText(blocks []ContentBlock) string {
	var parts []string
	for _, b := range blocks {
		switch b.Kind {
		case BlockText:
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		case BlockThinking:
			if b.Text != "" {
				parts = append(parts, "[Thinking: "+b.Text+"]")
			}
		case BlockUnknown:
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

// extractContent produces the display text and structured tool records for
// one event. The toolUseResult sidecar is preferred over the inline
// tool_result payload when both exist.
func extractContent(ev *rawEvent, inner *rawInnerMessage) (text string, calls []ToolCall, result *ToolResult) {
	var content json.RawMessage
	if inner != nil {
		content = inner.Content
	}

	plain, blocks, isPlain := decodeBlocks(content)
	if isPlain {
		text = plain
	} else {
		text = flattenText(blocks)
	}

	for _, b := range blocks {
		switch b.Kind {
		case BlockToolUse:
			calls = append(calls, ToolCall{
				ID:          b.ID,
				Name:        b.Name,
				Input:       b.Input,
				ResultIndex: -1,
			})
		case BlockToolResult:
			if result == nil {
				result = &ToolResult{
					ToolUseID: b.ToolUseID,
					Payload:   b.Payload,
					CallIndex: -1,
				}
			}
		}
	}

	if len(ev.ToolUseResult) > 0 {
		if result == nil {
			result = &ToolResult{CallIndex: -1}
		}
		result.Payload = ev.ToolUseResult
	}

	// A pure tool-call message would otherwise render empty
	if text == "" && len(calls) > 0 {
		if len(calls) == 1 {
			text = fmt.Sprintf("[Calling tool: %s]", calls[0].Name)
		} else {
			names := make([]string, len(calls))
			for i, c := range calls {
				names[i] = c.Name
			}
			text = fmt.Sprintf("[Calling %d tools: %s]", len(calls), strings.Join(names, ", "))
		}
	}

	return text, calls, result
}
