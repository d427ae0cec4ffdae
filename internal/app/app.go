// Package app is the root Bubble Tea model. It routes between views, owns
// the poller and turns state store changes into re-renders.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/keys"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/mutation"
	"github.com/nhle/kanban/internal/state"
	appsync "github.com/nhle/kanban/internal/sync"
	"github.com/nhle/kanban/internal/ui"
	"github.com/nhle/kanban/internal/ui/board"
	"github.com/nhle/kanban/internal/ui/boardform"
	"github.com/nhle/kanban/internal/ui/boards"
	"github.com/nhle/kanban/internal/ui/command"
	"github.com/nhle/kanban/internal/ui/deletetask"
	"github.com/nhle/kanban/internal/ui/detail"
	helpview "github.com/nhle/kanban/internal/ui/help"
	"github.com/nhle/kanban/internal/ui/login"
	"github.com/nhle/kanban/internal/ui/notify"
	"github.com/nhle/kanban/internal/ui/taskform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewBoard
	ViewDetail
	ViewBoards
	ViewBoardForm
	ViewTaskForm
	ViewDeleteTask
	ViewNotifications
	ViewHelp
	ViewCommand
)

// Authenticator signs the user in and out.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (model.User, error)
	Logout() error
}

// Deps are the services the UI works with.
type Deps struct {
	Store     *state.Store
	Mutations *mutation.Service
	Session   Authenticator
	Poller    *appsync.Poller
	ServerURL string
	// Timeout bounds each request the UI starts.
	Timeout time.Duration
	Log     log.FieldLogger
}

// Model is the root Bubble Tea model that manages view routing and
// layout.
type Model struct {
	deps         Deps
	currentView  ViewState
	previousView ViewState
	// returnView is where the task form and delete confirmation go back to.
	returnView ViewState
	layout     ui.Layout
	keys       *keys.KeyMap
	updates    <-chan struct{}

	boardView   board.Model
	detailView  detail.Model
	boardsView  boards.Model
	boardForm   boardform.Model
	taskForm    taskform.Model
	deleteTask  deletetask.Model
	loginView   login.Model
	notifyView  notify.Model
	helpView    helpview.Model
	commandView command.Model

	ready bool
}

// New creates the root model. When the store already holds a logged-in
// user the board is shown first, otherwise the login form.
func New(deps Deps) Model {
	if deps.Timeout <= 0 {
		deps.Timeout = 10 * time.Second
	}
	if deps.Log == nil {
		deps.Log = log.StandardLogger()
	}
	k := keys.DefaultKeyMap()

	m := Model{
		deps:        deps,
		currentView: ViewLogin,
		returnView:  ViewBoard,
		keys:        k,
		updates:     deps.Store.Subscribe(),
		boardView:   board.New(k, 80, 24),
		detailView:  detail.New(k, 80, 24),
		boardsView:  boards.New(k, 80, 24),
		boardForm:   boardform.New(80, 24),
		taskForm:    taskform.New(80, 24),
		deleteTask:  deletetask.New(80, 24),
		loginView:   login.New(deps.ServerURL, 80, 24),
		notifyView:  notify.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
	if deps.Store.User().LoggedIn() {
		m.currentView = ViewBoard
	}
	m.syncFromStore()
	return m
}

// CurrentView returns the view on screen.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Init starts listening to the store and either loads the boards or
// opens the login form.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return tea.Batch(m.waitForState(), m.loginView.Start())
	}
	return tea.Batch(m.waitForState(), m.loadInitial(), m.deps.Poller.Start())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.boardView.SetSize(w, h)
		m.detailView.SetSize(w, h)
		m.boardsView.SetSize(w, h)
		m.boardForm.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.deleteTask.SetSize(w, h)
		m.loginView.SetSize(w, h)
		m.notifyView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case stateChangedMsg:
		m.syncFromStore()
		return m, m.waitForState()

	case appsync.RefreshResultMsg:
		waitCmd := m.deps.Poller.WaitForNextResult()
		if msg.AuthExpired && m.currentView != ViewLogin {
			cmd := m.expireSession()
			return m, tea.Batch(waitCmd, cmd)
		}
		return m, waitCmd

	case loadedMsg:
		if msg.authExpired && m.currentView != ViewLogin {
			cmd := m.expireSession()
			return m, cmd
		}
		return m, nil

	// Login
	case login.SubmitMsg:
		return m, m.login(msg.Username, msg.Password)

	case loginResultMsg:
		if msg.err != nil {
			cmd := m.loginView.ShowError(loginErrorText(msg.err))
			return m, cmd
		}
		m.deps.Store.SetUser(msg.user)
		m.currentView = ViewBoard
		return m, tea.Batch(m.loadInitial(), m.deps.Poller.Start())

	case login.QuitMsg:
		return m, m.quit()

	// Board
	case board.OpenTaskMsg:
		m.detailView.Open(m.deps.Store.ActiveBoard(), msg.TaskID)
		m.currentView = ViewDetail
		return m, nil

	case board.NewTaskMsg:
		m.returnView = m.currentView
		m.currentView = ViewTaskForm
		cmd := m.taskForm.StartCreate()
		return m, cmd

	case board.EditTaskMsg:
		return m.startEditTask(msg.TaskID)

	case detail.EditMsg:
		return m.startEditTask(msg.TaskID)

	case board.DeleteTaskMsg:
		return m.startDeleteTask(msg.ColNo, msg.TaskID)

	case detail.DeleteMsg:
		return m.startDeleteTask(msg.ColNo, msg.TaskID)

	case board.MoveTaskMsg:
		return m, m.runCommit(m.deps.Mutations.BeginMoveTask(msg.Move))

	// Detail
	case detail.ToggleSubtaskMsg:
		return m, m.runCommit(m.deps.Mutations.BeginToggleSubtask(msg.TaskID, msg.SubtaskID))

	case detail.BackMsg:
		m.currentView = ViewBoard
		return m, nil

	// Task form
	case taskform.SubmitMsg:
		return m, m.saveTask(msg)

	case taskSavedMsg:
		if msg.result.OK() {
			m.currentView = m.afterTask()
			return m, nil
		}
		cmd := m.taskForm.ShowErrors(msg.result.FieldErrors)
		return m, cmd

	case taskform.CancelMsg:
		m.currentView = m.returnView
		return m, nil

	// Delete task
	case deletetask.ConfirmMsg:
		// The dialog stays up until the service answers.
		return m, m.deleteTaskCmd(msg.ColNo, msg.TaskID)

	case taskDeletedMsg:
		if m.currentView != ViewDeleteTask {
			return m, nil
		}
		if msg.result.OK() {
			m.currentView = m.returnView
			if m.currentView == ViewDetail {
				m.currentView = ViewBoard
			}
			return m, nil
		}
		cmd := m.deleteTask.Failed()
		return m, cmd

	case deletetask.CancelMsg:
		m.currentView = m.returnView
		return m, nil

	// Boards menu
	case boards.SelectMsg:
		m.currentView = ViewBoard
		return m, m.loadBoard(msg.ID)

	case boards.CreateMsg:
		m.currentView = ViewBoardForm
		cmd := m.boardForm.StartCreate()
		return m, cmd

	case boards.EditMsg:
		m.currentView = ViewBoardForm
		cmd := m.boardForm.StartEdit(msg.Board)
		return m, cmd

	case boards.DeleteMsg:
		return m, m.runCommit(m.deps.Mutations.BeginDeleteBoard(msg.ID))

	case boards.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	// Board form
	case boardform.SubmitMsg:
		return m, m.saveBoard(msg)

	case boardSavedMsg:
		if msg.result.OK() {
			if msg.created {
				m.currentView = ViewBoard
			} else {
				m.openBoards()
			}
			return m, nil
		}
		cmd := m.boardForm.ShowErrors(msg.result.FieldErrors)
		return m, cmd

	case boardform.CancelMsg:
		m.openBoards()
		return m, nil

	// Notifications
	case notify.HistoryMsg:
		var cmd tea.Cmd
		m.notifyView, cmd = m.notifyView.Update(msg)
		return m, cmd

	case notify.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	// Command palette
	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(command.Command(msg))

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case committedMsg:
		// Failures were already rolled back and reported through the store.
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if !m.capturesText() {
			if next, cmd, handled := m.handleGlobalKey(msg); handled {
				return next, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturesText reports whether the active view needs every key press,
// so single-letter shortcuts must not be intercepted.
func (m Model) capturesText() bool {
	switch m.currentView {
	case ViewLogin, ViewBoardForm, ViewTaskForm, ViewDeleteTask, ViewCommand:
		return true
	case ViewBoards:
		return m.boardsView.Confirming()
	}
	return false
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit) && m.currentView == ViewBoard:
		return m, m.quit(), true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Boards) && m.currentView != ViewBoards:
		m.openBoards()
		return m, nil, true

	case key.Matches(msg, m.keys.Notifications) && m.currentView != ViewNotifications:
		m.previousView = m.currentView
		m.currentView = ViewNotifications
		return m, m.loadHistory(), true

	case key.Matches(msg, m.keys.Dismiss):
		if n, ok := m.deps.Store.LastNotification(); ok {
			m.deps.Store.DismissNotification(n.ID)
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Refresh):
		m.deps.Poller.Refresh()
		return m, m.loadBoardList(), true

	case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
		m.currentView = m.previousView
		return m, nil, true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewBoards:
		m.boardsView, cmd = m.boardsView.Update(msg)
	case ViewBoardForm:
		m.boardForm, cmd = m.boardForm.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewDeleteTask:
		m.deleteTask, cmd = m.deleteTask.Update(msg)
	case ViewNotifications:
		m.notifyView, cmd = m.notifyView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

func (m Model) startEditTask(taskID string) (tea.Model, tea.Cmd) {
	b := m.deps.Store.ActiveBoard()
	if b == nil {
		return m, nil
	}
	t, ok := b.Task(taskID)
	if !ok {
		return m, nil
	}
	m.returnView = m.currentView
	m.currentView = ViewTaskForm
	cmd := m.taskForm.StartEdit(t)
	return m, cmd
}

func (m Model) startDeleteTask(colNo int, taskID string) (tea.Model, tea.Cmd) {
	b := m.deps.Store.ActiveBoard()
	if b == nil {
		return m, nil
	}
	t, ok := b.Task(taskID)
	if !ok {
		return m, nil
	}
	m.returnView = m.currentView
	m.currentView = ViewDeleteTask
	cmd := m.deleteTask.Start(colNo, t)
	return m, cmd
}

// afterTask is where a saved task form leads: back to the detail view if
// the task is still there, otherwise the board.
func (m Model) afterTask() ViewState {
	if m.returnView == ViewDetail {
		if b := m.deps.Store.ActiveBoard(); b != nil {
			if _, ok := b.Task(m.detailView.TaskID()); ok {
				return ViewDetail
			}
		}
	}
	return ViewBoard
}

func (m *Model) openBoards() {
	m.boardsView.Open()
	m.currentView = ViewBoards
}

// syncFromStore copies the store's published state into the views.
func (m *Model) syncFromStore() {
	s := m.deps.Store
	active := s.ActiveBoard()
	activeID := ""
	if active != nil {
		activeID = active.ID
	}
	m.boardView.SetBoard(active)
	m.detailView.SetBoard(active)
	m.boardsView.SetBoards(s.Boards(), activeID)
	m.boardsView.SetAdmin(s.User().IsAdmin)
}

func (m *Model) expireSession() tea.Cmd {
	if err := m.deps.Session.Logout(); err != nil {
		m.deps.Log.WithError(err).Warn("clearing expired session")
	}
	m.deps.Store.Reset()
	m.currentView = ViewLogin
	return m.loginView.ShowError("Your session has expired. Please sign in again.")
}

func (m *Model) logout() tea.Cmd {
	if err := m.deps.Session.Logout(); err != nil {
		m.deps.Store.Notify("Unable to log out.", state.Detail(err.Error()))
	}
	m.deps.Store.Reset()
	m.currentView = ViewLogin
	return m.loginView.Start()
}

func (m Model) quit() tea.Cmd {
	m.deps.Poller.Stop()
	return tea.Quit
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.headerStatus())
	banner := m.layout.RenderBanner("", "")
	if n, ok := m.deps.Store.LastNotification(); ok {
		banner = m.layout.RenderBanner(n.Headline, n.Detail)
	}
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, banner, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewBoard:
		return m.boardView.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewBoards:
		return m.boardsView.View()
	case ViewBoardForm:
		return m.boardForm.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewDeleteTask:
		return m.deleteTask.View()
	case ViewNotifications:
		return m.notifyView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func (m Model) headerTitle() string {
	if b := m.deps.Store.ActiveBoard(); b != nil {
		return "kanban · " + b.Name
	}
	return "kanban"
}

// headerStatus shows the user and the refresher's state.
func (m Model) headerStatus() string {
	user := m.deps.Store.User()
	if !user.LoggedIn() {
		return "signed out"
	}

	status := m.deps.Poller.Status()
	sync := status.State.String()
	if status.State == appsync.SyncError {
		sync = "⚠ offline"
	} else if !status.LastSync.IsZero() {
		sync = fmt.Sprintf("synced %s", status.LastSync.Format("15:04"))
	}

	if n := m.deps.Store.Pending(); n > 0 {
		sync = fmt.Sprintf("saving (%d)", n)
	}

	name := user.Username
	if user.IsAdmin {
		name += " (admin)"
	}
	return name + " | " + sync
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | j/k select | space toggle | e edit | d delete"
	case ViewBoards:
		return "enter open | n new | e edit | d delete | esc back"
	case ViewBoardForm, ViewTaskForm:
		return "enter submit | esc cancel"
	case ViewDeleteTask:
		return "←/→ choose | enter confirm | esc cancel"
	case ViewNotifications:
		return "j/k scroll | esc back"
	default:
		return "q quit | ? help | h/j/k/l focus | H/J/K/L move | n new | b boards | x dismiss"
	}
}
