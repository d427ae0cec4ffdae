package deletetask

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/model"
)

var task = model.Task{
	ID:          "t1",
	Title:       "Build UI",
	Description: "Cards and columns",
	Subtasks: []model.Subtask{
		{ID: "s2", Title: "Code", Order: 1},
		{ID: "s1", Title: "Sketch", Order: 0},
	},
}

// answer completes the confirmation as if the user picked yes or no.
func answer(t *testing.T, m Model, yes bool) (Model, tea.Msg) {
	t.Helper()
	require.NotNil(t, m.form)
	m.fb.confirm = yes
	m.form.State = huh.StateCompleted
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	return m, cmd()
}

func TestViewShowsTaskReadOnly(t *testing.T) {
	m := New(100, 30)
	m.Start(2, task)

	out := m.View()
	assert.Contains(t, out, "Delete Task")
	assert.Contains(t, out, "Build UI")
	assert.Contains(t, out, "Cards and columns")
	assert.Contains(t, out, "Sketch")
	assert.Less(t, strings.Index(out, "Sketch"), strings.Index(out, "Code"), "subtasks in order")
}

func TestViewShowsNoneForEmptyFields(t *testing.T) {
	m := New(100, 30)
	m.Start(0, model.Task{ID: "t2", Title: "Bare"})

	assert.Contains(t, m.View(), "None")
}

func TestConfirmWaitsForService(t *testing.T) {
	m := New(100, 30)
	m.Start(2, task)

	m, msg := answer(t, m, true)
	assert.Equal(t, ConfirmMsg{ColNo: 2, TaskID: "t1"}, msg)
	assert.True(t, m.Pending())
	assert.Contains(t, m.View(), "Deleting...")

	// Keys are ignored until the service answers.
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.True(t, m.Pending())
}

func TestFailedReopensConfirmation(t *testing.T) {
	m := New(100, 30)
	m.Start(2, task)
	m, _ = answer(t, m, true)

	m.Failed()

	assert.False(t, m.Pending())
	assert.Equal(t, huh.StateNormal, m.form.State)
	assert.False(t, m.fb.confirm)
	assert.NotContains(t, m.View(), "Deleting...")
	assert.Contains(t, m.View(), "Build UI")

	_, msg := answer(t, m, true)
	assert.Equal(t, ConfirmMsg{ColNo: 2, TaskID: "t1"}, msg, "retry deletes the same task")
}

func TestDeclineCancels(t *testing.T) {
	m := New(100, 30)
	m.Start(0, task)

	m, msg := answer(t, m, false)
	assert.Equal(t, CancelMsg{}, msg)
	assert.False(t, m.Pending())
}
