package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmorrell/ccscope/internal/core/convlog"
	"github.com/pmorrell/ccscope/internal/core/discover"
)

type errMsg struct {
	err error
}

type conversationsLoadedMsg struct {
	items []conversationItem
}

type transcriptLoadedMsg struct {
	conv *convlog.Conversation
}

type yankedMsg struct{}

func loadConversations(root string) tea.Cmd {
	return func() tea.Msg {
		projects, err := discover.Projects(root)
		if err != nil {
			return errMsg{err}
		}

		var items []conversationItem
		for _, p := range projects {
			for _, c := range p.Conversations {
				items = append(items, conversationItem{
					sessionID:   c.SessionID,
					projectName: p.Name,
					projectPath: p.Path,
					filePath:    c.Path,
					size:        c.Size,
					mtime:       c.Mtime,
				})
			}
		}
		return conversationsLoadedMsg{items: items}
	}
}

func loadTranscript(parser *convlog.Parser, path string) tea.Cmd {
	return func() tea.Msg {
		conv, err := parser.ParseFile(path)
		if err != nil {
			return errMsg{err}
		}
		return transcriptLoadedMsg{conv: conv}
	}
}
