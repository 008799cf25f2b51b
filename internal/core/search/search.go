// Package search scans normalized conversations for term matches. It works
// directly on parsed messages; the sqlite index in internal/core/index is a
// separate, optional fast path.
package search

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pmorrell/ccscope/internal/core/convlog"
)

// DefaultContextRunes is the context window shown on each side of a match.
const DefaultContextRunes = 80

// Options control a live scan.
type Options struct {
	ContextRunes int  // runes of context either side of the match (0 = default)
	MaxMatches   int  // stop after this many matches (0 = unlimited)
	MatchCase    bool // case-sensitive matching
}

// Match is one term occurrence inside a conversation.
type Match struct {
	SessionID    string
	ProjectPath  string
	MessageIndex int
	Role         convlog.Role
	Timestamp    time.Time
	Snippet      string
}

// Conversation scans one parsed conversation for the filter's query term.
// Metadata-level filters (project, date range, role) are applied here too,
// so callers can feed every conversation through unconditionally.
func Conversation(conv *convlog.Conversation, f Filters, opts Options) []Match {
	if f.Query == "" {
		return nil
	}
	if f.Project != "" && !strings.Contains(conv.Metadata.ProjectPath, f.Project) {
		return nil
	}

	window := opts.ContextRunes
	if window <= 0 {
		window = DefaultContextRunes
	}

	needle := f.Query
	if !opts.MatchCase {
		needle = strings.ToLower(needle)
	}

	var matches []Match
	for _, msg := range conv.Messages {
		if f.Role != "" && string(msg.Role) != f.Role {
			continue
		}
		if f.HasAfter && msg.Timestamp.Before(f.After) {
			continue
		}
		if f.HasBefore && msg.Timestamp.After(f.Before) {
			continue
		}

		haystack := msg.Text
		if !opts.MatchCase {
			haystack = strings.ToLower(haystack)
		}
		pos := strings.Index(haystack, needle)
		if pos < 0 {
			continue
		}

		// Byte offsets in the lowered haystack can drift from the original
		// (some runes change byte length when lowered), but rune offsets
		// are preserved: ToLower maps rune to rune
		runeStart := utf8.RuneCountInString(haystack[:pos])
		runeLen := utf8.RuneCountInString(needle)

		matches = append(matches, Match{
			SessionID:    conv.Metadata.SessionID,
			ProjectPath:  conv.Metadata.ProjectPath,
			MessageIndex: msg.Index,
			Role:         msg.Role,
			Timestamp:    msg.Timestamp,
			Snippet:      snippet(msg.Text, runeStart, runeLen, window),
		})
		if opts.MaxMatches > 0 && len(matches) >= opts.MaxMatches {
			break
		}
	}
	return matches
}

// snippet cuts a context window around the match, working entirely in
// rune indices, and marks truncation with ellipses.
func snippet(text string, runeStart, runeLen, window int) string {
	runes := []rune(text)
	runeEnd := runeStart + runeLen
	if runeEnd > len(runes) {
		runeEnd = len(runes)
	}

	from := runeStart - window
	if from < 0 {
		from = 0
	}
	to := runeEnd + window
	if to > len(runes) {
		to = len(runes)
	}

	out := string(runes[from:to])
	out = strings.ReplaceAll(out, "\n", " ")
	if from > 0 {
		out = "..." + out
	}
	if to < len(runes) {
		out += "..."
	}
	return out
}
