package app

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/mutation"
	"github.com/nhle/kanban/internal/state"
	"github.com/nhle/kanban/internal/ui/boardform"
	"github.com/nhle/kanban/internal/ui/command"
	"github.com/nhle/kanban/internal/ui/notify"
	"github.com/nhle/kanban/internal/ui/taskform"
)

// stateChangedMsg is sent after every write to the state store.
type stateChangedMsg struct{}

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	user model.User
	err  error
}

// loadedMsg is sent when a board or the board list has been fetched.
type loadedMsg struct {
	authExpired bool
}

// boardSavedMsg carries the outcome of the board form.
type boardSavedMsg struct {
	created bool
	result  mutation.Result
}

// taskSavedMsg carries the outcome of the task form.
type taskSavedMsg struct {
	result mutation.Result
}

// taskDeletedMsg carries the outcome of a confirmed task delete.
type taskDeletedMsg struct {
	result mutation.Result
}

// committedMsg is sent when an optimistic mutation's request finished.
type committedMsg struct {
	result mutation.Result
}

// waitForState returns a command that blocks until the store changes.
func (m Model) waitForState() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// withTimeout runs fn with a context bounded by the request timeout.
func (m Model) withTimeout(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.deps.Timeout
	store := m.deps.Store
	return func() tea.Msg {
		done := store.StartRequest()
		defer done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

func (m Model) login(username, password string) tea.Cmd {
	auth := m.deps.Session
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		user, err := auth.Login(ctx, strings.TrimSpace(username), password)
		return loginResultMsg{user: user, err: err}
	})
}

// loginErrorText turns a login failure into the line shown on the form.
func loginErrorText(err error) string {
	if msg := api.ServerMessage(err); msg != "" {
		return state.Detail(msg)
	}
	if api.IsTransport(err) {
		return "Unable to reach the server."
	}
	return state.Detail(err.Error())
}

// loadInitial fetches the board list and, when nothing is on screen yet,
// the first board.
func (m Model) loadInitial() tea.Cmd {
	s := m.deps.Store
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		if err := s.LoadBoards(ctx); err != nil {
			return reportLoad(s, "Unable to load boards.", err, "")
		}
		boards := s.Boards()
		if s.ActiveBoard() != nil || len(boards) == 0 {
			return loadedMsg{}
		}
		if err := s.LoadBoard(ctx, boards[0].ID); err != nil {
			return reportLoad(s, "Unable to load board.", err, boards[0].ID)
		}
		return loadedMsg{}
	})
}

func (m Model) loadBoard(id string) tea.Cmd {
	s := m.deps.Store
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		if err := s.LoadBoard(ctx, id); err != nil {
			return reportLoad(s, "Unable to load board.", err, id)
		}
		return loadedMsg{}
	})
}

func (m Model) loadBoardList() tea.Cmd {
	s := m.deps.Store
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		if err := s.LoadBoards(ctx); err != nil {
			return reportLoad(s, "Unable to load boards.", err, "")
		}
		return loadedMsg{}
	})
}

// reportLoad notifies about a failed fetch. An expired session is not
// notified; the login form says it instead. A board the store already
// replaced with its cached snapshot has been notified by the store.
func reportLoad(s *state.Store, headline string, err error, boardID string) tea.Msg {
	if errors.Is(err, api.ErrUnauthorized) {
		return loadedMsg{authExpired: true}
	}
	if boardID != "" && api.IsTransport(err) {
		if active := s.ActiveBoard(); active != nil && active.ID == boardID {
			return loadedMsg{}
		}
	}
	s.Notify(headline, state.Detail(api.ServerMessage(err)))
	return loadedMsg{}
}

func (m Model) loadHistory() tea.Cmd {
	s := m.deps.Store
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		items, err := s.History(ctx, notify.HistoryLimit)
		return notify.HistoryMsg{Items: items, Err: err}
	})
}

func (m Model) saveBoard(msg boardform.SubmitMsg) tea.Cmd {
	svc := m.deps.Mutations
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		if msg.ID == "" {
			return boardSavedMsg{created: true, result: svc.CreateBoard(ctx, msg.Name)}
		}
		return boardSavedMsg{result: svc.EditBoard(ctx, msg.ID, msg.Name)}
	})
}

func (m Model) saveTask(msg taskform.SubmitMsg) tea.Cmd {
	svc := m.deps.Mutations
	in := mutation.TaskInput{
		Title:       msg.Title,
		Description: msg.Description,
		Subtasks:    msg.Subtasks,
	}
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		if msg.TaskID == "" {
			return taskSavedMsg{result: svc.CreateTask(ctx, in)}
		}
		return taskSavedMsg{result: svc.EditTask(ctx, msg.TaskID, in)}
	})
}

// runCommit sends an optimistic mutation's request in the background.
func (m Model) runCommit(commit mutation.Commit) tea.Cmd {
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		return committedMsg{result: commit(ctx)}
	})
}

// deleteTaskCmd removes the task from the screen and asks the service to
// delete it. A refusal restores the task before taskDeletedMsg arrives.
func (m Model) deleteTaskCmd(colNo int, taskID string) tea.Cmd {
	commit := m.deps.Mutations.BeginDeleteTask(colNo, taskID)
	return m.withTimeout(func(ctx context.Context) tea.Msg {
		return taskDeletedMsg{result: commit(ctx)}
	})
}

// executeCommand runs a command from the palette.
func (m Model) executeCommand(c command.Command) (tea.Model, tea.Cmd) {
	switch c.Name {
	case command.Refresh:
		m.deps.Poller.Refresh()
		return m, m.loadBoardList()
	case command.Boards:
		m.openBoards()
		return m, nil
	case command.Board:
		for _, b := range m.deps.Store.Boards() {
			if strings.EqualFold(b.Name, c.Arg) {
				m.currentView = ViewBoard
				return m, m.loadBoard(b.ID)
			}
		}
		m.deps.Store.Notify("Unable to open board.", state.Detail("No board is named "+c.Arg))
		return m, nil
	case command.NewBoard:
		m.currentView = ViewBoardForm
		cmd := m.boardForm.StartCreate()
		return m, cmd
	case command.NewTask:
		if m.deps.Store.ActiveBoard() == nil {
			return m, nil
		}
		m.returnView = ViewBoard
		m.currentView = ViewTaskForm
		cmd := m.taskForm.StartCreate()
		return m, cmd
	case command.Notifications:
		m.previousView = m.currentView
		m.currentView = ViewNotifications
		return m, m.loadHistory()
	case command.Logout:
		cmd := m.logout()
		return m, cmd
	case command.Quit:
		return m, m.quit()
	}
	m.deps.Store.Notify("Unknown command.", state.Detail(c.Name))
	return m, nil
}
