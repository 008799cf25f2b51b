package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

type conversationItem struct {
	sessionID   string
	projectName string
	projectPath string
	filePath    string
	size        int64
	mtime       time.Time
}

func (i conversationItem) FilterValue() string {
	return i.projectName + " " + i.sessionID
}

func (i conversationItem) Title() string {
	short := i.sessionID
	if len(short) > 12 {
		short = short[:12] + "..."
	}
	return fmt.Sprintf("%s  %s", i.projectName, short)
}

func (i conversationItem) Description() string {
	return fmt.Sprintf("%s | %s | %s",
		i.projectPath, humanize.Bytes(uint64(i.size)), humanize.Time(i.mtime))
}

type conversationDelegate struct {
	list.DefaultDelegate
}

func (d conversationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(conversationItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := c.Title()
	desc := c.Description()
	if index == m.Index() {
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	} else {
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}
	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createConversationList(items []conversationItem, width, height int) list.Model {
	listItems := make([]list.Item, len(items))
	for i, c := range items {
		listItems[i] = c
	}

	delegate := conversationDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(listItems, delegate, width, height-1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(true)

	return l
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.listReady {
		return m, nil
	}
	if msg.String() == "enter" {
		if selected, ok := m.list.SelectedItem().(conversationItem); ok {
			return m, loadTranscript(m.parser, selected.filePath)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) viewList() string {
	if !m.listReady {
		return "Loading conversations..."
	}
	help := statusStyle.Render("enter: open  /: filter  q: quit")
	return m.list.View() + "\n" + help
}
