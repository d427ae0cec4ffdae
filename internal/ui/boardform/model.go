// Package boardform is the create/edit board form.
package boardform

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/theme"
	"github.com/nhle/kanban/internal/validate"
)

// SubmitMsg is dispatched when the form is submitted. ID is empty when a
// board is being created.
type SubmitMsg struct {
	ID   string
	Name string
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

type formBindings struct {
	name string
}

// Model is the board form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	editID  string
	nameErr string
	pending bool
	width   int
	height  int
}

// New creates a board form model.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// StartCreate opens an empty form.
func (m *Model) StartCreate() tea.Cmd {
	m.editID = ""
	m.fb.name = ""
	m.nameErr = ""
	m.pending = false
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit opens the form filled in with b.
func (m *Model) StartEdit(b model.BoardSummary) tea.Cmd {
	m.editID = b.ID
	m.fb.name = b.Name
	m.nameErr = ""
	m.pending = false
	m.form = m.buildForm()
	return m.form.Init()
}

// ShowErrors reopens the form after a rejected submit, keeping what the
// user typed.
func (m *Model) ShowErrors(fieldErrors map[string]string) tea.Cmd {
	m.nameErr = fieldErrors["name"]
	m.pending = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Pending reports whether a submit is waiting for the service.
func (m Model) Pending() bool {
	return m.pending
}

// Update handles messages for the form.
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
		m.pending = true
		submit := SubmitMsg{ID: m.editID, Name: m.fb.name}
		return m, func() tea.Msg { return submit }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Board"
	if m.editID != "" {
		titleText = "Edit Board"
	}
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n"
	if m.nameErr != "" {
		content += theme.ErrorStyle.Render(m.nameErr) + "\n"
	}
	if m.pending {
		content += theme.HelpStyle.Render("Saving...") + "\n"
	}
	content += m.form.View()

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("e.g. Web Design").
				Value(&m.fb.name).
				Validate(validate.Func(validate.BoardName)),
		),
	).WithWidth(formWidth(m.width)).WithShowHelp(false)
}

func formWidth(w int) int {
	w -= 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}
