// Package taskform is the create/edit task form. Subtasks are edited as
// text, one title per line.
package taskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/theme"
	"github.com/nhle/kanban/internal/validate"
)

// SubmitMsg is dispatched when the form is submitted. TaskID is empty
// when a task is being created.
type SubmitMsg struct {
	TaskID      string
	Title       string
	Description string
	Subtasks    []string
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	subtasks    string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form        *huh.Form
	fb          *formBindings
	editID      string
	fieldErrors map[string]string
	pending     bool
	width       int
	height      int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editID = ""
	m.fb.title = ""
	m.fb.description = ""
	m.fb.subtasks = ""
	return m.open()
}

// StartEdit initializes the form for editing an existing task.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editID = t.ID
	m.fb.title = t.Title
	m.fb.description = t.Description

	titles := make([]string, 0, len(t.Subtasks))
	for _, st := range t.SortedSubtasks() {
		titles = append(titles, st.Title)
	}
	m.fb.subtasks = strings.Join(titles, "\n")
	return m.open()
}

// ShowErrors reopens the form after a rejected submit, keeping what the
// user typed.
func (m *Model) ShowErrors(fieldErrors map[string]string) tea.Cmd {
	cmd := m.open()
	m.fieldErrors = fieldErrors
	return cmd
}

func (m *Model) open() tea.Cmd {
	m.fieldErrors = nil
	m.pending = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Pending reports whether a submit is waiting for the service.
func (m Model) Pending() bool {
	return m.pending
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.pending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.pending = true
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Add New Task"
	if m.editID != "" {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render(titleText))
	b.WriteString("\n")
	for _, field := range []string{"title", "subtasks"} {
		if msg := m.fieldErrors[field]; msg != "" {
			b.WriteString(theme.ErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}
	if m.pending {
		b.WriteString(theme.HelpStyle.Render("Saving..."))
		b.WriteString("\n")
	}
	b.WriteString(m.form.View())

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(b.String())
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
				Title("Title").
				Placeholder("e.g. Take coffee break").
				Value(&m.fb.title).
				Validate(validate.Func(validate.TaskTitle)),
			huh.NewText().
				Title("Description").
				Placeholder("e.g. It's always good to take a break.").
				Value(&m.fb.description),
			huh.NewText().
				Title("Subtasks").
				Description("One per line").
				Placeholder("e.g. Make coffee").
				Value(&m.fb.subtasks).
				Validate(validateSubtasks),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	submit := SubmitMsg{
		TaskID:      m.editID,
		Title:       m.fb.title,
		Description: m.fb.description,
		Subtasks:    SplitSubtasks(m.fb.subtasks),
	}
	return func() tea.Msg { return submit }
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

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 12 {
		h = 12
	}
	return h
}

// SplitSubtasks turns the subtasks text into titles, dropping blank lines.
func SplitSubtasks(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func validateSubtasks(text string) error {
	for i, title := range SplitSubtasks(text) {
		if msg := validate.SubtaskTitle(title); msg != "" {
			return fmt.Errorf("line %d: %s", i+1, msg)
		}
	}
	return nil
}
