// Package boards is the boards menu: the team's boards, with create, edit
// and delete.
package boards

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/keys"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/theme"
)

// CloseMsg signals the parent to close the boards menu.
type CloseMsg struct{}

// SelectMsg asks for a board to become the active board.
type SelectMsg struct {
	ID string
}

// CreateMsg asks for the create-board form.
type CreateMsg struct{}

// EditMsg asks for the edit-board form.
type EditMsg struct {
	Board model.BoardSummary
}

// DeleteMsg is sent once the user confirmed deleting a board.
type DeleteMsg struct {
	ID string
}

type menuMode int

const (
	modeList menuMode = iota
	modeConfirmDelete
)

type formBindings struct {
	confirm bool
}

// Model is the Bubble Tea model for the boards menu.
type Model struct {
	mode        menuMode
	keys        *keys.KeyMap
	boards      []model.BoardSummary
	activeID    string
	isAdmin     bool
	selectedIdx int
	confirmForm *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates a boards menu.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// SetBoards replaces the list. activeID marks the board on screen.
func (m *Model) SetBoards(boards []model.BoardSummary, activeID string) {
	m.boards = boards
	m.activeID = activeID
	if m.selectedIdx >= len(m.boards) {
		m.selectedIdx = len(m.boards) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

// SetAdmin toggles the create/edit/delete hints. The service enforces the
// rule; the menu only hides what would be refused.
func (m *Model) SetAdmin(isAdmin bool) {
	m.isAdmin = isAdmin
}

// Open resets the menu to the list, selecting the active board.
func (m *Model) Open() {
	m.mode = modeList
	for i, b := range m.boards {
		if b.ID == m.activeID {
			m.selectedIdx = i
		}
	}
}

// Confirming reports whether the delete confirmation is open.
func (m Model) Confirming() bool {
	return m.mode == modeConfirmDelete
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode == modeConfirmDelete {
		return m.updateConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	return m.handleListKey(keyMsg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.boards) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.boards)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.boards) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.boards) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if b, ok := m.selected(); ok {
			id := b.ID
			return m, func() tea.Msg { return SelectMsg{ID: id} }
		}

	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return CreateMsg{} }

	case key.Matches(msg, m.keys.Edit):
		if b, ok := m.selected(); ok {
			return m, func() tea.Msg { return EditMsg{Board: b} }
		}

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.fb.confirm = false
			m.confirmForm = m.buildConfirmForm()
			m.mode = modeConfirmDelete
			return m, m.confirmForm.Init()
		}
	}
	return m, nil
}

func (m Model) selected() (model.BoardSummary, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.boards) {
		return model.BoardSummary{}, false
	}
	return m.boards[m.selectedIdx], true
}

func (m Model) buildConfirmForm() *huh.Form {
	name := ""
	if b, ok := m.selected(); ok {
		name = b.Name
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete board %q?", name)).
				Description("This will delete the board and all of its tasks. It cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeList
		if b, ok := m.selected(); ok && m.fb.confirm {
			id := b.ID
			return m, func() tea.Msg { return DeleteMsg{ID: id} }
		}
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the boards menu.
func (m Model) View() string {
	if m.mode == modeConfirmDelete && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render(fmt.Sprintf("All Boards (%d)", len(m.boards))))
	b.WriteString("\n\n")

	if len(m.boards) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No boards yet. Press 'n' to create one."))
	} else {
		for i, board := range m.boards {
			label := board.Name
			if board.ID == m.activeID {
				label = "● " + label
			}
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	hints := "enter open | esc back"
	if m.isAdmin {
		hints = "enter open | n new | e edit | d delete | esc back"
	}
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(hints))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}
