package search

import (
	"strings"
	"testing"
	"time"

	"github.com/pmorrell/ccscope/internal/core/convlog"
)

func testConversation() *convlog.Conversation {
	ts := func(min int) time.Time {
		return time.Date(2025, 3, 1, 9, min, 0, 0, time.UTC)
	}
	return &convlog.Conversation{
		Metadata: convlog.Metadata{
			SessionID:   "sess-1",
			ProjectPath: "/Users/anna/src/widget",
		},
		Messages: []convlog.Message{
			{Index: 0, Role: convlog.RoleUser, Text: "please fix the flaky timeout in the fetcher", Timestamp: ts(0)},
			{Index: 1, Role: convlog.RoleAssistant, Text: "I bumped the timeout and added a retry", Timestamp: ts(1)},
			{Index: 2, Role: convlog.RoleUser, Text: "thanks, looks good", Timestamp: ts(2)},
		},
	}
}

func TestConversation_BasicMatch(t *testing.T) {
	matches := Conversation(testConversation(), Filters{Query: "timeout"}, Options{})
	if len(matches) != 2 {
		t.Fatalf("match count = %d, want 2", len(matches))
	}
	if matches[0].MessageIndex != 0 || matches[1].MessageIndex != 1 {
		t.Errorf("matched indexes = %d, %d", matches[0].MessageIndex, matches[1].MessageIndex)
	}
	if !strings.Contains(matches[0].Snippet, "timeout") {
		t.Errorf("snippet = %q", matches[0].Snippet)
	}
}

func TestConversation_CaseInsensitiveByDefault(t *testing.T) {
	matches := Conversation(testConversation(), Filters{Query: "TIMEOUT"}, Options{})
	if len(matches) != 2 {
		t.Errorf("match count = %d, want 2", len(matches))
	}
	matches = Conversation(testConversation(), Filters{Query: "TIMEOUT"}, Options{MatchCase: true})
	if len(matches) != 0 {
		t.Errorf("case-sensitive match count = %d, want 0", len(matches))
	}
}

func TestConversation_RoleFilter(t *testing.T) {
	matches := Conversation(testConversation(), Filters{Query: "timeout", Role: "assistant"}, Options{})
	if len(matches) != 1 || matches[0].Role != convlog.RoleAssistant {
		t.Errorf("matches = %+v", matches)
	}
}

func TestConversation_ProjectFilter(t *testing.T) {
	if got := Conversation(testConversation(), Filters{Query: "timeout", Project: "other"}, Options{}); got != nil {
		t.Errorf("project mismatch should return nil, got %+v", got)
	}
	if got := Conversation(testConversation(), Filters{Query: "timeout", Project: "widget"}, Options{}); len(got) != 2 {
		t.Errorf("project substring match count = %d, want 2", len(got))
	}
}

func TestConversation_DateFilter(t *testing.T) {
	after := time.Date(2025, 3, 1, 9, 0, 30, 0, time.UTC)
	matches := Conversation(testConversation(), Filters{Query: "timeout", After: after, HasAfter: true}, Options{})
	if len(matches) != 1 || matches[0].MessageIndex != 1 {
		t.Errorf("matches = %+v", matches)
	}
}

func TestConversation_MaxMatches(t *testing.T) {
	matches := Conversation(testConversation(), Filters{Query: "timeout"}, Options{MaxMatches: 1})
	if len(matches) != 1 {
		t.Errorf("match count = %d, want 1", len(matches))
	}
}

func TestConversation_CaseFoldWidthChangingRune(t *testing.T) {
	// Lowering Ⱥ (U+023A, 2 bytes) yields ⱥ (U+2C65, 3 bytes), so byte
	// offsets found in the lowered text drift past the original's end
	conv := &convlog.Conversation{
		Messages: []convlog.Message{{Role: convlog.RoleUser, Text: "Ⱥx"}},
	}
	matches := Conversation(conv, Filters{Query: "x"}, Options{})
	if len(matches) != 1 {
		t.Fatalf("match count = %d, want 1", len(matches))
	}
	if matches[0].Snippet != "Ⱥx" {
		t.Errorf("snippet = %q, want %q", matches[0].Snippet, "Ⱥx")
	}
}

func TestConversation_CaseFoldSnippetAlignment(t *testing.T) {
	conv := &convlog.Conversation{
		Messages: []convlog.Message{{Role: convlog.RoleUser, Text: "Ⱥ marks precede the needle here"}},
	}
	matches := Conversation(conv, Filters{Query: "NEEDLE"}, Options{ContextRunes: 5})
	if len(matches) != 1 {
		t.Fatalf("match count = %d, want 1", len(matches))
	}
	if !strings.Contains(matches[0].Snippet, "needle") {
		t.Errorf("snippet misaligned: %q", matches[0].Snippet)
	}
}

func TestSnippet_ContextWindow(t *testing.T) {
	long := strings.Repeat("a", 200) + " needle " + strings.Repeat("b", 200)
	conv := &convlog.Conversation{
		Messages: []convlog.Message{{Role: convlog.RoleUser, Text: long}},
	}
	matches := Conversation(conv, Filters{Query: "needle"}, Options{ContextRunes: 10})
	if len(matches) != 1 {
		t.Fatalf("match count = %d", len(matches))
	}
	s := matches[0].Snippet
	if !strings.HasPrefix(s, "...") || !strings.HasSuffix(s, "...") {
		t.Errorf("snippet missing ellipses: %q", s)
	}
	// 6-rune needle, 10 runes of context each side, two 3-rune ellipses
	if got := len([]rune(s)); got != 32 {
		t.Errorf("snippet length = %d runes: %q", got, s)
	}
}

func TestParseQuery(t *testing.T) {
	f := ParseQuery("project:widget role:assistant after:2025-01-01 retry logic")
	if f.Project != "widget" || f.Role != "assistant" {
		t.Errorf("filters = %+v", f)
	}
	if !f.HasAfter || f.After.Year() != 2025 {
		t.Errorf("after = %v (has=%v)", f.After, f.HasAfter)
	}
	if f.Query != "retry logic" {
		t.Errorf("Query = %q", f.Query)
	}
}

func TestParseQuery_NaturalDate(t *testing.T) {
	f := ParseQuery("before:yesterday crash")
	if !f.HasBefore {
		t.Fatal("natural-language date not parsed")
	}
	if !f.Before.Before(time.Now()) {
		t.Errorf("Before = %v, want in the past", f.Before)
	}
	if f.Query != "crash" {
		t.Errorf("Query = %q", f.Query)
	}
}
