// Package deletetask asks for confirmation before a task is deleted,
// showing the task read-only.
package deletetask

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/theme"
)

// ConfirmMsg is sent when the user confirms the delete.
type ConfirmMsg struct {
	ColNo  int
	TaskID string
}

// CancelMsg is sent when the user backs out.
type CancelMsg struct{}

type formBindings struct {
	confirm bool
}

// Model is the delete-task confirmation.
type Model struct {
	task  model.Task
	colNo int
	form  *huh.Form
	fb    *formBindings
	// pending is set from confirm until the service answers.
	pending bool
	width   int
	height  int
}

// New creates the confirmation view.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// Start shows t, which lives in column colNo.
func (m *Model) Start(colNo int, t model.Task) tea.Cmd {
	m.task = t
	m.colNo = colNo
	m.pending = false
	m.fb.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this task?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithShowHelp(false)
	return m.form.Init()
}

// Failed reopens the confirmation after the service refused the delete,
// so the user can try again or cancel.
func (m *Model) Failed() tea.Cmd {
	return m.Start(m.colNo, m.task)
}

// Pending reports whether a confirmed delete is waiting on the service.
func (m Model) Pending() bool { return m.pending }

// Update handles messages. Input is ignored while a delete is pending.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.pending {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.fb.confirm {
			m.pending = true
			confirm := ConfirmMsg{ColNo: m.colNo, TaskID: m.task.ID}
			return m, func() tea.Msg { return confirm }
		}
		return m, func() tea.Msg { return CancelMsg{} }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the task fields greyed out above the confirmation.
func (m Model) View() string {
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGray)
	disabled := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Border(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorSubtle).
		Padding(0, 1).
		Width(min(m.width-8, 80))

	sections := []string{
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed).Render("Delete Task"),
		"",
		labelStyle.Render("Title"),
		disabled.Render(m.task.Title),
		labelStyle.Render("Description"),
		disabled.Render(orNone(m.task.Description)),
		labelStyle.Render("Subtasks"),
	}

	var subtasks []string
	for _, st := range m.task.SortedSubtasks() {
		subtasks = append(subtasks, st.Title)
	}
	sections = append(sections, disabled.Render(orNone(strings.Join(subtasks, "\n"))), "")

	switch {
	case m.pending:
		sections = append(sections, theme.HelpStyle.Render("Deleting..."))
	case m.form != nil:
		sections = append(sections, m.form.View())
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
