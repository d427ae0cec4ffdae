// Package board renders the active board as four side-by-side columns and
// turns key presses into requests for the root model.
package board

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/dnd"
	"github.com/nhle/kanban/internal/keys"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/theme"
)

// OpenTaskMsg asks for the detail view of a task.
type OpenTaskMsg struct {
	TaskID string
}

// NewTaskMsg asks for the create-task form.
type NewTaskMsg struct{}

// EditTaskMsg asks for the edit-task form.
type EditTaskMsg struct {
	TaskID string
}

// DeleteTaskMsg asks for the delete-task confirmation.
type DeleteTaskMsg struct {
	ColNo  int
	TaskID string
}

// MoveTaskMsg carries a computed drag.
type MoveTaskMsg struct {
	Move dnd.Move
}

// Model is the board view.
type Model struct {
	board  *model.Board
	keys   *keys.KeyMap
	col    int
	row    int
	width  int
	height int
}

// New creates a board view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetBoard replaces the board being shown. Focus stays on the same
// position when the board is the same one, and resets otherwise.
func (m *Model) SetBoard(b *model.Board) {
	if b == nil || m.board == nil || b.ID != m.board.ID {
		m.col, m.row = 0, 0
	}
	m.board = b
	m.clamp()
}

// Board returns the board being shown.
func (m Model) Board() *model.Board {
	return m.board
}

// Focus returns the focused column number and row.
func (m Model) Focus() (col, row int) {
	return m.col, m.row
}

// FocusedTask returns the task under the cursor.
func (m Model) FocusedTask() (model.Task, bool) {
	if m.board == nil || m.col >= len(m.board.Columns) {
		return model.Task{}, false
	}
	tasks := m.board.Columns[m.col].SortedTasks()
	if m.row < 0 || m.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.row], true
}

// Update handles key presses.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.board == nil {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		if m.col > 0 {
			m.col--
			m.clamp()
		}
	case key.Matches(keyMsg, m.keys.Right):
		if m.col < len(m.board.Columns)-1 {
			m.col++
			m.clamp()
		}
	case key.Matches(keyMsg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.row < m.lastRow() {
			m.row++
		}

	case key.Matches(keyMsg, m.keys.MoveLeft):
		return m.drag(dnd.Left)
	case key.Matches(keyMsg, m.keys.MoveRight):
		return m.drag(dnd.Right)
	case key.Matches(keyMsg, m.keys.MoveUp):
		return m.drag(dnd.Up)
	case key.Matches(keyMsg, m.keys.MoveDown):
		return m.drag(dnd.Down)

	case key.Matches(keyMsg, m.keys.Select):
		if t, ok := m.FocusedTask(); ok {
			id := t.ID
			return m, func() tea.Msg { return OpenTaskMsg{TaskID: id} }
		}
		if m.onNewTask() {
			return m, func() tea.Msg { return NewTaskMsg{} }
		}
	case key.Matches(keyMsg, m.keys.New):
		return m, func() tea.Msg { return NewTaskMsg{} }
	case key.Matches(keyMsg, m.keys.Edit):
		if t, ok := m.FocusedTask(); ok {
			id := t.ID
			return m, func() tea.Msg { return EditTaskMsg{TaskID: id} }
		}
	case key.Matches(keyMsg, m.keys.Delete):
		if t, ok := m.FocusedTask(); ok {
			id, colNo := t.ID, m.col
			return m, func() tea.Msg { return DeleteTaskMsg{ColNo: colNo, TaskID: id} }
		}
	}
	return m, nil
}

// drag computes a move for the focused card and keeps the cursor on it.
func (m Model) drag(dir dnd.Direction) (Model, tea.Cmd) {
	t, ok := m.FocusedTask()
	if !ok {
		return m, nil
	}
	mv, err := dnd.Compute(m.board, t.ID, dir)
	if err != nil {
		// dnd.ErrNoMove at an edge.
		return m, nil
	}

	if moved, ok := dnd.Apply(*m.board, mv); ok {
		m.board = &moved
		m.col = mv.ToCol
		for i, st := range moved.Columns[mv.ToCol].SortedTasks() {
			if st.ID == t.ID {
				m.row = i
				break
			}
		}
	}
	return m, func() tea.Msg { return MoveTaskMsg{Move: mv} }
}

// lastRow is the last focusable row of the current column. The inbox has
// one extra row for the new-task affordance.
func (m Model) lastRow() int {
	if m.board == nil || m.col >= len(m.board.Columns) {
		return 0
	}
	n := len(m.board.Columns[m.col].Tasks)
	if m.col == 0 {
		return n
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

func (m Model) onNewTask() bool {
	return m.board != nil && m.col == 0 && len(m.board.Columns) > 0 &&
		m.row == len(m.board.Columns[0].Tasks)
}

func (m *Model) clamp() {
	if m.board == nil {
		m.col, m.row = 0, 0
		return
	}
	if m.col >= len(m.board.Columns) {
		m.col = len(m.board.Columns) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	if last := m.lastRow(); m.row > last {
		m.row = last
	}
	if m.row < 0 {
		m.row = 0
	}
}

// View renders the board.
func (m Model) View() string {
	if m.board == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No board selected. Press b to pick or create one.")
	}

	n := len(m.board.Columns)
	if n == 0 {
		return ""
	}
	width := m.width / n
	if width < 12 {
		width = 12
	}

	cols := make([]string, 0, n)
	for i, col := range m.board.Columns {
		focusRow := -1
		if i == m.col {
			focusRow = m.row
		}
		cols = append(cols, renderColumn(col, width, m.height, focusRow, i == 0))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
