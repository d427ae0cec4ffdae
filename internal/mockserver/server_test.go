package mockserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/mockserver"
	"github.com/nhle/kanban/internal/model"
)

func setup(t *testing.T) (*mockserver.Server, *api.Client, string) {
	t.Helper()
	srv := mockserver.New()
	srv.AddUser("bob", "secret", "t1", true)
	boardID := srv.SeedBoard("t1", "Ops")

	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	token, err := srv.IssueToken("bob", "t1", true)
	require.NoError(t, err)
	return srv, api.NewClient(hs.URL, 5*time.Second, api.WithToken(token)), boardID
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestRejectsForeignToken(t *testing.T) {
	srv := mockserver.New(mockserver.WithSecret([]byte("a")))
	other := mockserver.New(mockserver.WithSecret([]byte("b")))
	token, err := other.IssueToken("eve", "t1", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/boards", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid auth token.")
}

func TestExpiredTokenRejected(t *testing.T) {
	srv := mockserver.New(mockserver.WithTokenTTL(-time.Minute))
	token, err := srv.IssueToken("bob", "t1", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/boards", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMoveRenumbersColumns(t *testing.T) {
	srv, client, boardID := setup(t)
	a := srv.SeedTask(boardID, 0, "a")
	srv.SeedTask(boardID, 0, "b")
	srv.SeedTask(boardID, 1, "c")

	b, _ := srv.Board(boardID)
	require.NoError(t, client.Tasks().Move(context.Background(), a,
		api.TaskMoveReq{Column: b.Columns[1].ID, Order: 0}))

	b, _ = srv.Board(boardID)
	assert.Equal(t, []string{"b"}, titles(b.Columns[0].SortedTasks()))
	assert.Equal(t, 0, b.Columns[0].Tasks[0].Order)
	assert.Equal(t, []string{"a", "c"}, titles(b.Columns[1].SortedTasks()))
}

func TestEditKeepsSubtaskIDs(t *testing.T) {
	srv, client, boardID := setup(t)
	id := srv.SeedTask(boardID, 1, "task", "one")
	b, _ := srv.Board(boardID)
	task, _ := b.Task(id)

	err := client.Tasks().Patch(context.Background(), id, api.TaskPatchReq{
		Title:    "renamed",
		Column:   b.Columns[1].ID,
		Subtasks: append(task.Subtasks, model.Subtask{Title: "two"}),
	})
	require.NoError(t, err)

	b, _ = srv.Board(boardID)
	got, ok := b.Task(id)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)
	require.Len(t, got.Subtasks, 2)
	assert.Equal(t, task.Subtasks[0].ID, got.Subtasks[0].ID)
	assert.NotEmpty(t, got.Subtasks[1].ID)
	assert.Equal(t, 1, got.Subtasks[1].Order)
	// Still in the ready column.
	col, _, _ := b.FindTask(id)
	assert.Equal(t, 1, col)
}

func TestSubtaskValidation(t *testing.T) {
	_, client, boardID := setup(t)
	_, err := client.Tasks().Post(context.Background(), api.TaskPostReq{
		Title:    "ok",
		Board:    boardID,
		Subtasks: []string{strings.Repeat("x", 51)},
	})
	assert.Equal(t, "Subtask title cannot be longer than 50 characters.", api.FieldError(err, "subtasks"))
}

func TestRequestsAreRecorded(t *testing.T) {
	srv, client, _ := setup(t)
	_, err := client.Boards().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /boards"}, srv.Requests())
}
