package tui

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrapText_RuneBoundaries(t *testing.T) {
	// Every rune is multibyte; a byte-indexed cut would split one
	text := strings.Repeat("日本語テキスト ", 10)
	wrapped := wrapText(text, 10)

	if !utf8.ValidString(wrapped) {
		t.Fatal("wrapped text contains an invalid UTF-8 sequence")
	}
	for _, line := range strings.Split(wrapped, "\n") {
		if n := utf8.RuneCountInString(line); n > 10 {
			t.Errorf("line has %d runes, want at most 10: %q", n, line)
		}
	}
}

func TestWrapText_PrefersWordBreaks(t *testing.T) {
	wrapped := wrapText("alpha beta gamma", 11)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 2 || lines[0] != "alpha beta" || lines[1] != "gamma" {
		t.Errorf("lines = %q", lines)
	}
}

func TestWrapText_UnbreakableRun(t *testing.T) {
	wrapped := wrapText(strings.Repeat("x", 25), 10)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 3 {
		t.Fatalf("line count = %d, want 3", len(lines))
	}
	if lines[0] != strings.Repeat("x", 10) || lines[2] != strings.Repeat("x", 5) {
		t.Errorf("lines = %q", lines)
	}
}

func TestWrapText_ZeroWidthPassthrough(t *testing.T) {
	if got := wrapText("untouched", 0); got != "untouched" {
		t.Errorf("got %q", got)
	}
}
