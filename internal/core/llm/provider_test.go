package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pmorrell/ccscope/internal/core/convlog"
)

type fakeProvider struct {
	prompt string
}

func (f *fakeProvider) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return "Fixed a flaky timeout in the widget project.", nil
}

func (f *fakeProvider) Name() string { return "fake" }

func msg(role convlog.Role, text string, ts time.Time) convlog.Message {
	return convlog.Message{Role: role, Text: text, Timestamp: ts}
}

func TestSummarize_PromptContents(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	conv := &convlog.Conversation{
		Metadata: convlog.Metadata{ProjectPath: "/Users/anna/src/widget"},
		Messages: []convlog.Message{
			msg(convlog.RoleUser, "please fix the timeout", ts),
			msg(convlog.RoleTool, "exit status 1", ts),
			msg(convlog.RoleAssistant, "bumped the timeout to 30s", ts.Add(time.Minute)),
		},
	}

	fake := &fakeProvider{}
	s := NewSummarizer(fake)
	out, err := s.Summarize(context.Background(), conv)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if out == "" {
		t.Error("empty summary")
	}

	if !strings.Contains(fake.prompt, "please fix the timeout") {
		t.Error("prompt missing user message")
	}
	if strings.Contains(fake.prompt, "exit status 1") {
		t.Error("prompt should exclude tool traffic")
	}
	if !strings.Contains(fake.prompt, "/Users/anna/src/widget") {
		t.Error("prompt missing project path")
	}
	if !strings.Contains(fake.prompt, "Human (2025-03-01 09:00)") {
		t.Error("prompt missing role and timestamp header")
	}
}

func TestSummarize_WindowsLongConversations(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	conv := &convlog.Conversation{}
	for i := 0; i < 40; i++ {
		conv.Messages = append(conv.Messages,
			msg(convlog.RoleUser, "question number "+string(rune('A'+i%26)), ts))
	}

	fake := &fakeProvider{}
	if _, err := NewSummarizer(fake).Summarize(context.Background(), conv); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(fake.prompt, "Human ("); n > 15 {
		t.Errorf("windowed prompt has %d messages, want at most 15", n)
	}
}

func TestSummarize_EmptyConversation(t *testing.T) {
	s := NewSummarizer(&fakeProvider{})
	if _, err := s.Summarize(context.Background(), &convlog.Conversation{}); err == nil {
		t.Error("expected error for empty conversation")
	}
}
