package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmorrell/ccscope/internal/core/convlog"
)

func createViewport(conv *convlog.Conversation, width, height int) viewport.Model {
	vp := viewport.New(width, height-2)
	vp.SetContent(renderTranscript(conv, width))
	return vp
}

func renderTranscript(conv *convlog.Conversation, width int) string {
	var b strings.Builder

	meta := conv.Metadata
	fmt.Fprintf(&b, "%s\n", summaryStyle.Render(meta.ProjectPath))
	fmt.Fprintf(&b, "%s", timestampStyle.Render("Session "+meta.SessionID))
	if meta.GitBranch != "" {
		fmt.Fprintf(&b, "%s", timestampStyle.Render(" on "+meta.GitBranch))
	}
	b.WriteString("\n\n")

	for _, msg := range conv.Messages {
		style := roleStyle(msg.Role)
		header := strings.ToUpper(string(msg.Role))
		if !msg.Timestamp.IsZero() {
			header += timestampStyle.Render("  " + msg.Timestamp.Format("15:04:05"))
		}
		b.WriteString(style.Render(header))
		b.WriteString("\n")
		if msg.Text != "" {
			b.WriteString(wrapText(msg.Text, width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func roleStyle(role convlog.Role) lipgloss.Style {
	switch role {
	case convlog.RoleUser:
		return userStyle
	case convlog.RoleAssistant:
		return assistantStyle
	case convlog.RoleTool:
		return toolStyle
	default:
		return summaryStyle
	}
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		return m, yankTranscript(m.current)
	case "esc":
		m.mode = listView
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	help := "y: copy  esc/q: back  ctrl+c: quit"
	if m.status != "" {
		help = m.status + "  |  " + help
	}
	return m.viewport.View() + "\n" + statusStyle.Render(help)
}

func yankTranscript(conv *convlog.Conversation) tea.Cmd {
	return func() tea.Msg {
		var b strings.Builder
		for _, msg := range conv.Messages {
			fmt.Fprintf(&b, "[%s] %s\n\n", msg.Role, msg.Text)
		}
		if err := clipboard.WriteAll(b.String()); err != nil {
			return errMsg{err}
		}
		return yankedMsg{}
	}
}

// wrapText hard-wraps long lines so the viewport never scrolls sideways.
// Wrapping works on runes; byte cuts would split multibyte characters.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			cut := width
			for i := width; i > 0; i-- {
				if runes[i-1] == ' ' {
					cut = i - 1
					break
				}
			}
			if cut == 0 {
				cut = width
			}
			out = append(out, string(runes[:cut]))
			runes = runes[cut:]
			for len(runes) > 0 && runes[0] == ' ' {
				runes = runes[1:]
			}
		}
		out = append(out, string(runes))
	}
	return strings.Join(out, "\n")
}
