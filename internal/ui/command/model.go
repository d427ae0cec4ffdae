// Package command is the ":" palette. It resolves what the user typed to
// one of a fixed set of commands before handing it to the root model.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/theme"
)

// Command names.
const (
	Boards        = "boards"
	Board         = "board"
	NewBoard      = "new board"
	NewTask       = "new task"
	Notifications = "notifications"
	Refresh       = "refresh"
	Logout        = "logout"
	Quit          = "quit"
)

// Spec describes one command.
type Spec struct {
	Name string
	// Arg names the argument, if the command takes one.
	Arg  string
	Help string
}

// Specs are the commands the palette knows, in the order they are listed.
var Specs = []Spec{
	{Name: Boards, Help: "open the boards menu"},
	{Name: Board, Arg: "name", Help: "open a board by name"},
	{Name: NewBoard, Help: "create a board"},
	{Name: NewTask, Help: "add a task to the inbox"},
	{Name: Notifications, Help: "show the notification history"},
	{Name: Refresh, Help: "reload the board and the board list"},
	{Name: Logout, Help: "sign out"},
	{Name: Quit, Help: "exit"},
}

var (
	ErrUnknown   = errors.New("unknown command")
	ErrAmbiguous = errors.New("ambiguous command")
	ErrNoArg     = errors.New("missing argument")
)

// Command is a resolved command.
type Command struct {
	Name string
	Arg  string
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg Command

// CancelMsg is emitted when the user closes the palette.
type CancelMsg struct{}

// Resolve turns input into a command. A command that takes an argument
// must be spelled out; one that doesn't may be shortened to any unique
// prefix.
func Resolve(input string) (Command, error) {
	text := strings.Join(strings.Fields(input), " ")
	lower := strings.ToLower(text)
	if lower == "" {
		return Command{}, ErrUnknown
	}

	for _, s := range Specs {
		if s.Arg == "" {
			if lower == s.Name {
				return Command{Name: s.Name}, nil
			}
			continue
		}
		if lower == s.Name {
			return Command{}, fmt.Errorf("%w: %s <%s>", ErrNoArg, s.Name, s.Arg)
		}
		if strings.HasPrefix(lower, s.Name+" ") {
			return Command{Name: s.Name, Arg: text[len(s.Name)+1:]}, nil
		}
	}

	var matches []string
	for _, s := range Specs {
		if s.Arg == "" && strings.HasPrefix(s.Name, lower) {
			matches = append(matches, s.Name)
		}
	}
	switch len(matches) {
	case 0:
		return Command{}, fmt.Errorf("%w: %s", ErrUnknown, text)
	case 1:
		return Command{Name: matches[0]}, nil
	}
	return Command{}, fmt.Errorf("%w: %s", ErrAmbiguous, strings.Join(matches, ", "))
}

// Model is the command palette view.
type Model struct {
	input   textinput.Model
	history []string
	// recall is the history index shown, len(history) when none is.
	recall int
	err    error
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	names := make([]string, 0, len(Specs))
	for _, s := range Specs {
		names = append(names, s.Name)
	}
	ti.SetSuggestions(names)
	ti.Width = width - 6

	return Model{input: ti, width: width, height: height}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m.submit()
		case "esc":
			m.reset()
			return m, func() tea.Msg { return CancelMsg{} }
		case "up":
			if m.recall > 0 {
				m.recall--
				m.input.SetValue(m.history[m.recall])
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			if m.recall < len(m.history)-1 {
				m.recall++
				m.input.SetValue(m.history[m.recall])
				m.input.CursorEnd()
			} else {
				m.recall = len(m.history)
				m.input.SetValue("")
			}
			return m, nil
		}
		m.err = nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	c, err := Resolve(text)
	if err != nil {
		m.err = err
		return m, nil
	}

	if n := len(m.history); n == 0 || m.history[n-1] != text {
		m.history = append(m.history, text)
	}
	m.reset()
	return m, func() tea.Msg { return CommandMsg(c) }
}

func (m *Model) reset() {
	m.input.Reset()
	m.err = nil
	m.recall = len(m.history)
}

// View renders the command palette.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Command Palette")

	lines := []string{title, m.input.View()}
	if m.err != nil {
		lines = append(lines, theme.ErrorStyle.Render(m.err.Error()))
	}
	lines = append(lines, "")
	for _, s := range Specs {
		name := s.Name
		if s.Arg != "" {
			name += " <" + s.Arg + ">"
		}
		lines = append(lines, theme.HelpStyle.Render(fmt.Sprintf("%-16s %s", name, s.Help)))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	m.reset()
	return m.input.Focus()
}
