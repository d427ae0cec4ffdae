package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/mockserver"
)

type fixture struct {
	srv    *mockserver.Server
	client *api.Client
	board  string
}

func newFixture(t *testing.T, admin bool) *fixture {
	t.Helper()
	srv := mockserver.New(mockserver.WithSecret([]byte("test-secret")))
	srv.AddUser("alice", "pw", "team-1", admin)
	board := srv.SeedBoard("team-1", "Main")

	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	client := api.NewClient(hs.URL, 5*time.Second, api.WithRetryWait(time.Millisecond))
	resp, err := client.Session().Login(context.Background(), api.LoginReq{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	client.SetToken(resp.Token)

	return &fixture{srv: srv, client: client, board: board}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.client.Session().Login(context.Background(), api.LoginReq{Username: "alice", Password: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, "Invalid username or password.", api.ServerMessage(err))
}

func TestBoardsRoundTrip(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	created, err := f.client.Boards().Post(ctx, api.BoardPostReq{Name: "Second", TeamID: "team-1"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	list, err := f.client.Boards().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Main", list[0].Name)
	assert.Equal(t, "Second", list[1].Name)

	require.NoError(t, f.client.Boards().Patch(ctx, created.ID, api.BoardPatchReq{Name: "Renamed"}))
	b, err := f.client.Boards().Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", b.Name)
	require.Len(t, b.Columns, 4)
	assert.Equal(t, "go!", b.Columns[2].Name)

	require.NoError(t, f.client.Boards().Delete(ctx, created.ID))
	_, err = f.client.Boards().Get(ctx, created.ID)
	assert.True(t, errors.Is(err, api.ErrNotFound))
}

func TestBoardNameFieldError(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.client.Boards().Post(context.Background(), api.BoardPostReq{Name: "Main", TeamID: "team-1"})
	require.Error(t, err)
	assert.Equal(t, "A board with that name already exists.", api.FieldError(err, "name"))
	assert.Empty(t, api.ServerMessage(err))
}

func TestNonAdminGetsServerMessage(t *testing.T) {
	f := newFixture(t, false)
	taskID := f.srv.SeedTask(f.board, 0, "write docs")

	err := f.client.Tasks().Patch(context.Background(), taskID, api.TaskPatchReq{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, "Only team admins can edit tasks.", api.ServerMessage(err))

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, http.MethodPatch, apiErr.Method)
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	created, err := f.client.Tasks().Post(ctx, api.TaskPostReq{
		Title:    "ship it",
		Board:    f.board,
		Column:   0,
		Subtasks: []string{"build", "deploy"},
	})
	require.NoError(t, err)

	b, err := f.client.Boards().Get(ctx, f.board)
	require.NoError(t, err)
	require.Len(t, b.Columns[0].Tasks, 1)
	task := b.Columns[0].Tasks[0]
	assert.Equal(t, created.ID, task.ID)
	require.Len(t, task.Subtasks, 2)

	require.NoError(t, f.client.Subtasks().Patch(ctx, task.Subtasks[0].ID, api.SubtaskPatchReq{Done: true}))

	require.NoError(t, f.client.Tasks().Move(ctx, task.ID, api.TaskMoveReq{Column: b.Columns[2].ID, Order: 0}))
	b, err = f.client.Boards().Get(ctx, f.board)
	require.NoError(t, err)
	assert.Empty(t, b.Columns[0].Tasks)
	require.Len(t, b.Columns[2].Tasks, 1)
	assert.Equal(t, 1, b.Columns[2].Tasks[0].DoneCount())

	require.NoError(t, f.client.Tasks().Delete(ctx, task.ID))
	err = f.client.Tasks().Delete(ctx, task.ID)
	assert.Equal(t, "Task not found.", api.ServerMessage(err))
}

func TestTaskTitleFieldError(t *testing.T) {
	f := newFixture(t, true)
	_, err := f.client.Tasks().Post(context.Background(), api.TaskPostReq{Title: " ", Board: f.board})
	require.Error(t, err)
	assert.Equal(t, "Task title cannot be empty.", api.FieldError(err, "title"))
}

func TestRetriesRateLimitedRequests(t *testing.T) {
	f := newFixture(t, true)
	f.srv.FailNext(http.StatusTooManyRequests, map[string]string{"error": "Slow down."})
	f.srv.FailNext(http.StatusTooManyRequests, map[string]string{"error": "Slow down."})

	list, err := f.client.Boards().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	srv := mockserver.New()
	hs := httptest.NewServer(srv.Handler())
	defer hs.Close()

	client := api.NewClient(hs.URL, time.Second,
		api.WithRetryWait(time.Millisecond), api.WithMaxRetries(1))
	for i := 0; i < 3; i++ {
		srv.FailNext(http.StatusTooManyRequests, map[string]string{"error": "Slow down."})
	}

	_, err := client.Boards().List(context.Background())
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Len(t, srv.Requests(), 2)
}

func TestServerErrorsAreNotRetried(t *testing.T) {
	f := newFixture(t, true)
	f.srv.FailNext(http.StatusInternalServerError, map[string]string{})
	before := len(f.srv.Requests())

	_, err := f.client.Boards().List(context.Background())
	require.Error(t, err)
	assert.Empty(t, api.ServerMessage(err))
	assert.Len(t, f.srv.Requests(), before+1)
}

func TestTransportError(t *testing.T) {
	hs := httptest.NewServer(http.NotFoundHandler())
	url := hs.URL
	hs.Close()

	client := api.NewClient(url, time.Second)
	_, err := client.Boards().List(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))
	assert.Empty(t, api.ServerMessage(err))
}

func TestMissingToken(t *testing.T) {
	f := newFixture(t, true)
	f.client.SetToken("")
	_, err := f.client.Boards().List(context.Background())
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, "Auth token not found.", api.ServerMessage(err))
}
