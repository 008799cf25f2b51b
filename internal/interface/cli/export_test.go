package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/pmorrell/ccscope/internal/core/convlog"
)

func exportFixture() *convlog.Conversation {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &convlog.Conversation{
		Metadata: convlog.Metadata{
			SessionID:    "b7e2c9d1-4f3a-4d2e-9c1b-2a6f8e0d5c43",
			ProjectPath:  "/Users/anna/src/widget",
			GitBranch:    "main",
			StartedAt:    ts,
			MessageCount: 2,
		},
		Messages: []convlog.Message{
			{Index: 0, Role: convlog.RoleUser, Text: "please fix the timeout", Timestamp: ts},
			{Index: 1, Role: convlog.RoleAssistant, Text: "bumped it to 30s", Timestamp: ts.Add(time.Minute),
				Usage: &convlog.Usage{OutputTokens: 20, CostUSD: 0.0123}},
		},
	}
}

func TestRenderConversation_DefaultTemplate(t *testing.T) {
	out, err := renderConversation(exportFixture(), "")
	if err != nil {
		t.Fatalf("renderConversation() error = %v", err)
	}

	for _, want := range []string{
		"# Conversation b7e2c9d1-4f3a-4d2e-9c1b-2a6f8e0d5c43",
		"`/Users/anna/src/widget`",
		"`main`",
		"## user (2025-03-01 09:00:00)",
		"please fix the timeout",
		"## assistant (2025-03-01 09:01:00)",
		"bumped it to 30s",
		"$0.0123",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q", want)
		}
	}
}

func TestRenderConversation_TextNotEscaped(t *testing.T) {
	conv := exportFixture()
	conv.Messages[0].Text = "compare a < b && c > d"

	out, err := renderConversation(conv, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "a < b && c > d") {
		t.Error("message text should render verbatim, not HTML-escaped")
	}
}

func TestRenderConversation_MissingTemplateFile(t *testing.T) {
	if _, err := renderConversation(exportFixture(), "/nonexistent/template.mustache"); err == nil {
		t.Error("expected error for missing template file")
	}
}

func TestTruncateText(t *testing.T) {
	long := strings.Repeat("word ", 100)
	got := truncateText(long, 200)
	if len(got) > 204 {
		t.Errorf("truncated length = %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated text should end with ellipsis")
	}

	if got := truncateText("short", 200); got != "short" {
		t.Errorf("short text changed: %q", got)
	}
}
