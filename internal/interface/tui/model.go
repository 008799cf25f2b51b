// Package tui is an interactive terminal browser over the conversation
// logs. It reads the files directly through the parser, so no index or
// sync step is needed.
package tui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmorrell/ccscope/internal/core/convlog"
)

type viewMode int

const (
	listView viewMode = iota
	detailView
)

type Model struct {
	root   string
	parser *convlog.Parser

	mode      viewMode
	list      list.Model
	listReady bool
	viewport  viewport.Model
	width     int
	height    int
	err       error
	status    string

	current *convlog.Conversation
}

// New creates a browser over the given projects root.
func New(root string, parser *convlog.Parser) Model {
	if parser == nil {
		parser = &convlog.Parser{}
	}
	return Model{root: root, parser: parser, mode: listView}
}

func (m Model) Init() tea.Cmd {
	return loadConversations(m.root)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.list.SetSize(msg.Width, msg.Height-1)
		}
		if m.mode == detailView && m.current != nil {
			m.viewport = createViewport(m.current, m.width, m.height)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.mode == listView {
				return m, tea.Quit
			}
			m.mode = listView
			m.status = ""
			return m, nil
		}

		switch m.mode {
		case listView:
			return m.updateList(msg)
		case detailView:
			return m.updateDetail(msg)
		}

	case conversationsLoadedMsg:
		m.list = createConversationList(msg.items, m.width, m.height)
		m.listReady = true
		return m, nil

	case transcriptLoadedMsg:
		m.current = msg.conv
		m.viewport = createViewport(msg.conv, m.width, m.height)
		m.mode = detailView
		m.status = ""
		return m, nil

	case yankedMsg:
		m.status = "Copied transcript to clipboard"
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit"
	}

	switch m.mode {
	case listView:
		return m.viewList()
	case detailView:
		return m.viewDetail()
	}
	return ""
}
