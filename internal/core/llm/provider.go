package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmorrell/ccscope/internal/core/convlog"
)

// Provider is the interface for text-generation backends.
type Provider interface {
	// GenerateText generates text from a prompt
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name (e.g., "bedrock")
	Name() string
}

// Summarizer produces a prose summary of one conversation using an
// external model. It consumes the normalized records as-is and never
// mutates them.
type Summarizer struct {
	provider Provider
}

// NewSummarizer creates a summarizer with the given provider.
func NewSummarizer(provider Provider) *Summarizer {
	return &Summarizer{provider: provider}
}

// Summarize generates a 1-2 sentence summary for a conversation.
func (s *Summarizer) Summarize(ctx context.Context, conv *convlog.Conversation) (string, error) {
	if len(conv.Messages) == 0 {
		return "", fmt.Errorf("no messages to summarize")
	}
	return s.provider.GenerateText(ctx, buildSummaryPrompt(conv))
}

// buildSummaryPrompt windows the conversation (first few and last several
// messages) to keep the prompt inside token limits. Tool traffic and file
// history noise is excluded; the model sees role, timestamp, and display
// text.
func buildSummaryPrompt(conv *convlog.Conversation) string {
	const (
		maxMessages   = 15
		maxContentLen = 300
	)

	var kept []convlog.Message
	for _, msg := range conv.Messages {
		switch msg.Role {
		case convlog.RoleUser, convlog.RoleAssistant:
			if msg.Text != "" {
				kept = append(kept, msg)
			}
		}
	}

	if len(kept) > maxMessages {
		firstN := 3
		head := kept[:firstN]
		tail := kept[len(kept)-(maxMessages-firstN):]
		kept = append(append([]convlog.Message{}, head...), tail...)
	}

	var b strings.Builder
	for _, msg := range kept {
		role := "Human"
		if msg.Role == convlog.RoleAssistant {
			role = "Assistant"
		}
		content := msg.Text
		if len(content) > maxContentLen {
			content = content[:maxContentLen] + "..."
		}
		fmt.Fprintf(&b, "%s (%s): %s\n\n", role, msg.Timestamp.Format("2006-01-02 15:04"), content)
	}

	return `Summarize this coding-assistant conversation in 1-2 sentences. Focus on what was accomplished or attempted.

Project: ` + conv.Metadata.ProjectPath + `

Conversation:
` + b.String() + `
Summary:`
}
