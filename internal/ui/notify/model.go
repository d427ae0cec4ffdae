// Package notify lists past notifications, newest first.
package notify

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/keys"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/theme"
)

// HistoryLimit is how many notifications the view asks for.
const HistoryLimit = 100

// CloseMsg signals the parent to close the view.
type CloseMsg struct{}

// HistoryMsg carries the notification history.
type HistoryMsg struct {
	Items []model.Notification
	Err   error
}

// Model is the notification history view.
type Model struct {
	keys   *keys.KeyMap
	items  []model.Notification
	err    error
	offset int
	width  int
	height int
}

// New creates the view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case HistoryMsg:
		m.items = msg.Items
		m.err = msg.Err
		m.offset = 0
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Notifications):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Down):
			if m.offset < len(m.items)-1 {
				m.offset++
			}
		case key.Matches(msg, m.keys.Up):
			if m.offset > 0 {
				m.offset--
			}
		}
	}
	return m, nil
}

// View renders the history.
func (m Model) View() string {
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(title.Render(fmt.Sprintf("Notifications (%d)", len(m.items))))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(theme.ErrorStyle.Render(m.err.Error()))
	case len(m.items) == 0:
		b.WriteString(theme.HelpStyle.Render("Nothing has gone wrong yet."))
	default:
		timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
		headStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
		rows := max(m.height-6, 1)
		end := min(m.offset+rows, len(m.items))
		for _, n := range m.items[m.offset:end] {
			b.WriteString(fmt.Sprintf("%s  %s %s\n",
				timeStyle.Render(n.CreatedAt.Local().Format("Jan 02 15:04:05")),
				headStyle.Render(n.Headline),
				n.Detail,
			))
		}
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
