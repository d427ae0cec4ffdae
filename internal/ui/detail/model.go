// Package detail shows one task with its subtasks. Space toggles the
// subtask under the cursor.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/keys"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/theme"
)

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// ToggleSubtaskMsg asks for a subtask's done flag to be flipped.
type ToggleSubtaskMsg struct {
	TaskID    string
	SubtaskID string
}

// EditMsg asks for the edit form of the task on screen.
type EditMsg struct {
	TaskID string
}

// DeleteMsg asks for the delete confirmation of the task on screen.
type DeleteMsg struct {
	ColNo  int
	TaskID string
}

// Model is the task detail view component.
type Model struct {
	board    *model.Board
	taskID   string
	cursor   int
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Open shows taskID from b.
func (m *Model) Open(b *model.Board, taskID string) {
	m.taskID = taskID
	m.cursor = 0
	m.SetBoard(b)
	m.viewport.GotoTop()
}

// SetBoard refreshes the view from a newer board.
func (m *Model) SetBoard(b *model.Board) {
	m.board = b
	if t, ok := m.task(); ok && m.cursor >= len(t.Subtasks) {
		m.cursor = max(len(t.Subtasks)-1, 0)
	}
	m.viewport.SetContent(m.renderContent())
}

// TaskID returns the task on screen.
func (m Model) TaskID() string {
	return m.taskID
}

func (m Model) task() (model.Task, bool) {
	if m.board == nil {
		return model.Task{}, false
	}
	return m.board.Task(m.taskID)
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		t, found := m.task()
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(keyMsg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.Down):
			if found && m.cursor < len(t.Subtasks)-1 {
				m.cursor++
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.Toggle):
			if !found || len(t.Subtasks) == 0 {
				return m, nil
			}
			toggle := ToggleSubtaskMsg{
				TaskID:    t.ID,
				SubtaskID: t.SortedSubtasks()[m.cursor].ID,
			}
			return m, func() tea.Msg { return toggle }

		case key.Matches(keyMsg, m.keys.Edit):
			if found {
				id := t.ID
				return m, func() tea.Msg { return EditMsg{TaskID: id} }
			}
			return m, nil

		case key.Matches(keyMsg, m.keys.Delete):
			if found {
				colNo, _, _ := m.board.FindTask(t.ID)
				del := DeleteMsg{ColNo: colNo, TaskID: t.ID}
				return m, func() tea.Msg { return del }
			}
			return m, nil
		}
	}

	// pgup/pgdn scroll long descriptions.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if _, ok := m.task(); !ok {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("This task no longer exists. Press esc to go back.")
	}
	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	task, ok := m.task()
	if !ok {
		return ""
	}

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(task.Title))

	if colNo, _, found := m.board.FindTask(task.ID); found {
		name := m.board.Columns[colNo].Name
		sections = append(sections, theme.ColumnHeaderStyle(name).Render("Status: "+name))
	}
	sections = append(sections, "")

	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	sections = append(sections, "", separator, "")

	subtasks := task.SortedSubtasks()
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, headerStyle.Render(
		fmt.Sprintf("Subtasks (%d of %d)", task.DoneCount(), len(subtasks)),
	))

	doneStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Strikethrough(true)
	for i, st := range subtasks {
		box := "[ ]"
		title := st.Title
		if st.Done {
			box = "[x]"
			title = doneStyle.Render(title)
		}
		line := box + " " + title
		if i == m.cursor {
			sections = append(sections, theme.SelectedItemStyle.Render(line))
		} else {
			sections = append(sections, theme.ListItemStyle.Render(line))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
