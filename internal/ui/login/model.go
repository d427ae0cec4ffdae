// Package login is the sign-in form shown when there is no valid session.
package login

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/theme"
	"github.com/nhle/kanban/internal/validate"
)

// SubmitMsg carries the credentials the user entered.
type SubmitMsg struct {
	Username string
	Password string
}

// QuitMsg is sent when the user aborts the form.
type QuitMsg struct{}

type formBindings struct {
	username string
	password string
}

// Model is the login form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	server  string
	errMsg  string
	pending bool
	width   int
	height  int
}

// New creates a login form for the service at server.
func New(server string, width, height int) Model {
	return Model{fb: &formBindings{}, server: server, width: width, height: height}
}

// Start opens the form. The username is kept from the previous attempt;
// the password is not.
func (m *Model) Start() tea.Cmd {
	m.fb.password = ""
	m.pending = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.fb.username).
				Validate(validate.Func(validate.Username)),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validate.Func(validate.Password)),
		),
	).WithWidth(48)
	return m.form.Init()
}

// ShowError reopens the form with msg above it.
func (m *Model) ShowError(msg string) tea.Cmd {
	m.errMsg = msg
	return m.Start()
}

// Update handles messages.
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
		m.errMsg = ""
		submit := SubmitMsg{Username: m.fb.username, Password: m.fb.password}
		return m, func() tea.Msg { return submit }
	case huh.StateAborted:
		return m, func() tea.Msg { return QuitMsg{} }
	}
	return m, cmd
}

// View renders the form centered on screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Sign in")
	server := theme.HelpStyle.Render(m.server)

	parts := []string{title, server, ""}
	if m.errMsg != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.errMsg), "")
	}
	if m.pending {
		parts = append(parts, theme.HelpStyle.Render("Signing in..."), "")
	}
	parts = append(parts, m.form.View())

	box := theme.BorderStyle.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
