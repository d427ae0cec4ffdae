package app

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/credential"
	"github.com/nhle/kanban/internal/dnd"
	"github.com/nhle/kanban/internal/mockserver"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/mutation"
	"github.com/nhle/kanban/internal/session"
	"github.com/nhle/kanban/internal/state"
	appsync "github.com/nhle/kanban/internal/sync"
	"github.com/nhle/kanban/internal/ui/board"
	"github.com/nhle/kanban/internal/ui/command"
	"github.com/nhle/kanban/internal/ui/deletetask"
	"github.com/nhle/kanban/internal/ui/detail"
	"github.com/nhle/kanban/internal/ui/login"
	"github.com/nhle/kanban/internal/ui/taskform"
)

type harness struct {
	srv     *mockserver.Server
	store   *state.Store
	deps    Deps
	boardID string
	taskA   string
	taskB   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)

	srv := mockserver.New(mockserver.WithLogger(logger))
	srv.AddUser("demo", "demo", "team-1", true)
	boardID := srv.SeedBoard("team-1", "Platform Launch")
	taskA := srv.SeedTask(boardID, 0, "Build UI", "Sketch", "Code")
	taskB := srv.SeedTask(boardID, 0, "Write docs")

	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	client := api.NewClient(hs.URL, 5*time.Second, api.WithRetryWait(time.Millisecond))
	store := state.New(client.Boards(), nil, logger)
	poller := appsync.New(store, 0, time.Second, logger)
	t.Cleanup(poller.Stop)

	return &harness{
		srv:   srv,
		store: store,
		deps: Deps{
			Store:     store,
			Mutations: mutation.NewService(store, client.Boards(), client.Tasks(), client.Subtasks(), logger),
			Session:   session.NewManager(client.Session(), credential.NewMemory(), client),
			Poller:    poller,
			ServerURL: hs.URL,
			Timeout:   5 * time.Second,
			Log:       logger,
		},
		boardID: boardID,
		taskA:   taskA,
		taskB:   taskB,
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loggedIn signs in as demo and loads the first board the way the login
// result does.
func (h *harness) loggedIn(t *testing.T) Model {
	t.Helper()
	m := New(h.deps)

	m, cmd := update(t, m, login.SubmitMsg{Username: "demo", Password: "demo"})
	require.NotNil(t, cmd)
	res := cmd()
	require.IsType(t, loginResultMsg{}, res)
	require.NoError(t, res.(loginResultMsg).err)

	m, _ = update(t, m, res)
	require.Equal(t, ViewBoard, m.CurrentView())

	m, _ = update(t, m, m.loadInitial()())
	m, _ = update(t, m, stateChangedMsg{})
	return m
}

func TestStartsOnLoginWithoutSession(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ViewLogin, New(h.deps).CurrentView())

	h.store.SetUser(model.User{Username: "demo", TeamID: "team-1"})
	assert.Equal(t, ViewBoard, New(h.deps).CurrentView())
}

func TestLoginLoadsFirstBoard(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	user := h.store.User()
	assert.Equal(t, "demo", user.Username)
	assert.True(t, user.IsAdmin)

	active := h.store.ActiveBoard()
	require.NotNil(t, active)
	assert.Equal(t, h.boardID, active.ID)
	assert.Len(t, h.store.Boards(), 1)

	require.NotNil(t, m.boardView.Board())
	assert.Equal(t, h.boardID, m.boardView.Board().ID)
	assert.Equal(t, "kanban · Platform Launch", m.headerTitle())
}

func TestWrongPasswordStaysOnLogin(t *testing.T) {
	h := newHarness(t)
	m := New(h.deps)

	m, cmd := update(t, m, login.SubmitMsg{Username: "demo", Password: "nope"})
	res := cmd()
	require.IsType(t, loginResultMsg{}, res)
	err := res.(loginResultMsg).err
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password.", loginErrorText(err))

	m, _ = update(t, m, res)
	assert.Equal(t, ViewLogin, m.CurrentView())
	assert.False(t, h.store.User().LoggedIn())
}

func TestDeleteIsOptimistic(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, board.DeleteTaskMsg{ColNo: 0, TaskID: h.taskA})
	require.Equal(t, ViewDeleteTask, m.CurrentView())

	m, cmd := update(t, m, deletetask.ConfirmMsg{ColNo: 0, TaskID: h.taskA})
	assert.Equal(t, ViewDeleteTask, m.CurrentView(), "dialog stays up until the service answers")

	// Gone from the screen before the request is sent.
	_, found := h.store.ActiveBoard().Task(h.taskA)
	assert.False(t, found)

	res := cmd()
	require.IsType(t, taskDeletedMsg{}, res)
	assert.True(t, res.(taskDeletedMsg).result.OK())

	m, _ = update(t, m, res)
	assert.Equal(t, ViewBoard, m.CurrentView())

	b, ok := h.srv.Board(h.boardID)
	require.True(t, ok)
	_, found = b.Task(h.taskA)
	assert.False(t, found)
}

func TestFailedDeleteKeepsDialogOpen(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, board.DeleteTaskMsg{ColNo: 0, TaskID: h.taskA})
	h.srv.FailNext(500, map[string]string{"error": "Boom"})
	m, cmd := update(t, m, deletetask.ConfirmMsg{ColNo: 0, TaskID: h.taskA})

	res := cmd()
	require.IsType(t, taskDeletedMsg{}, res)
	assert.False(t, res.(taskDeletedMsg).result.OK())

	m, _ = update(t, m, res)
	assert.Equal(t, ViewDeleteTask, m.CurrentView())

	_, found := h.store.ActiveBoard().Task(h.taskA)
	assert.True(t, found, "task restored")

	n, ok := h.store.LastNotification()
	require.True(t, ok)
	assert.Equal(t, "Unable to delete task.", n.Headline)
	assert.Equal(t, "Boom.", n.Detail)

	m, _ = update(t, m, deletetask.CancelMsg{})
	assert.Equal(t, ViewBoard, m.CurrentView())
}

func TestDeleteFromDetailReturnsToBoard(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, board.OpenTaskMsg{TaskID: h.taskA})
	require.Equal(t, ViewDetail, m.CurrentView())
	m, _ = update(t, m, detail.DeleteMsg{ColNo: 0, TaskID: h.taskA})
	require.Equal(t, ViewDeleteTask, m.CurrentView())

	m, cmd := update(t, m, deletetask.ConfirmMsg{ColNo: 0, TaskID: h.taskA})
	m, _ = update(t, m, cmd())
	assert.Equal(t, ViewBoard, m.CurrentView())
}

func TestFailedMoveRollsBack(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)
	active := h.store.ActiveBoard()

	h.srv.FailNext(500, map[string]string{"error": "Boom"})
	_, cmd := update(t, m, board.MoveTaskMsg{Move: dnd.Move{
		TaskID:   h.taskA,
		FromCol:  0,
		ToCol:    1,
		ColumnID: active.Columns[1].ID,
		Order:    0,
	}})

	colNo, _, ok := h.store.ActiveBoard().FindTask(h.taskA)
	require.True(t, ok)
	assert.Equal(t, 1, colNo)

	res := cmd()
	require.IsType(t, committedMsg{}, res)
	assert.False(t, res.(committedMsg).result.OK())

	colNo, _, ok = h.store.ActiveBoard().FindTask(h.taskA)
	require.True(t, ok)
	assert.Equal(t, 0, colNo)

	n, ok := h.store.LastNotification()
	require.True(t, ok)
	assert.Equal(t, "Unable to move task.", n.Headline)
	assert.Equal(t, "Boom.", n.Detail)
}

func TestTaskFormKeepsFieldErrors(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, board.NewTaskMsg{})
	require.Equal(t, ViewTaskForm, m.CurrentView())

	m, cmd := update(t, m, taskform.SubmitMsg{Title: "  "})
	res := cmd()
	require.IsType(t, taskSavedMsg{}, res)

	m, _ = update(t, m, res)
	assert.Equal(t, ViewTaskForm, m.CurrentView())
	assert.Contains(t, m.taskForm.View(), "Task title cannot be empty.")
}

func TestCreateTaskReturnsToBoard(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, board.NewTaskMsg{})
	m, cmd := update(t, m, taskform.SubmitMsg{Title: "Plan release", Subtasks: []string{"Tag"}})
	res := cmd()
	require.IsType(t, taskSavedMsg{}, res)
	require.True(t, res.(taskSavedMsg).result.OK())

	m, _ = update(t, m, res)
	assert.Equal(t, ViewBoard, m.CurrentView())

	inbox := h.store.ActiveBoard().Columns[0].SortedTasks()
	require.Len(t, inbox, 3)
	assert.Equal(t, "Plan release", inbox[2].Title)
}

func TestExpiredSessionReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, appsync.RefreshResultMsg{AuthExpired: true, At: time.Now()})

	assert.Equal(t, ViewLogin, m.CurrentView())
	assert.False(t, h.store.User().LoggedIn())
	assert.Nil(t, h.store.ActiveBoard())
}

func TestBoardCommandNotifiesAndDismisses(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, keyPress(":"))
	require.Equal(t, ViewCommand, m.CurrentView())

	m, _ = update(t, m, command.CommandMsg{Name: command.Board, Arg: "Roadmap"})
	assert.Equal(t, ViewBoard, m.CurrentView())

	n, ok := h.store.LastNotification()
	require.True(t, ok)
	assert.Equal(t, "Unable to open board.", n.Headline)
	assert.Equal(t, "No board is named Roadmap.", n.Detail)

	m, _ = update(t, m, keyPress("x"))
	_, ok = h.store.LastNotification()
	assert.False(t, ok)
	assert.Equal(t, ViewBoard, m.CurrentView())
}

func TestBoardCommandOpensByName(t *testing.T) {
	h := newHarness(t)
	other := h.srv.SeedBoard("team-1", "Marketing Plan")
	m := h.loggedIn(t)

	m, cmd := update(t, m, command.CommandMsg{Name: command.Board, Arg: "marketing plan"})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	m, _ = update(t, m, stateChangedMsg{})

	assert.Equal(t, ViewBoard, m.CurrentView())
	assert.Equal(t, other, h.store.ActiveBoard().ID)
	assert.Equal(t, other, m.boardView.Board().ID)
}

func TestHelpToggles(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, keyPress("?"))
	assert.Equal(t, ViewHelp, m.CurrentView())
	m, _ = update(t, m, keyPress("?"))
	assert.Equal(t, ViewBoard, m.CurrentView())
}

func TestOpenTaskShowsDetail(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	m, _ = update(t, m, board.OpenTaskMsg{TaskID: h.taskA})
	require.Equal(t, ViewDetail, m.CurrentView())
	assert.Equal(t, h.taskA, m.detailView.TaskID())
	assert.Contains(t, m.detailView.View(), "Subtasks (0 of 2)")
}

func TestViewRendersFrame(t *testing.T) {
	h := newHarness(t)
	m := h.loggedIn(t)

	assert.Equal(t, "Loading...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.View()
	assert.Contains(t, out, "Platform Launch")
	assert.Contains(t, out, "demo (admin)")
	assert.Contains(t, out, "Build UI")
}
