package board

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/dnd"
	"github.com/nhle/kanban/internal/keys"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/tests/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newView(t *testing.T, b model.Board) Model {
	t.Helper()
	m := New(keys.DefaultKeyMap(), 120, 40)
	m.SetBoard(&b)
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Msg) {
	t.Helper()
	m, cmd := m.Update(msg)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestFocusMovesBetweenColumns(t *testing.T) {
	m := newView(t, testutil.NewBoard("b1", "alpha", "beta"))

	m, _ = press(t, m, runes("l"))
	col, row := m.Focus()
	assert.Equal(t, 1, col)
	assert.Equal(t, 0, row)

	m, _ = press(t, m, runes("h"))
	m, _ = press(t, m, runes("h"))
	col, _ = m.Focus()
	assert.Equal(t, 0, col, "focus stops at the first column")
}

func TestEnterOpensFocusedTask(t *testing.T) {
	m := newView(t, testutil.NewBoard("b1", "alpha", "beta"))

	m, _ = press(t, m, runes("j"))
	_, msg := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, OpenTaskMsg{TaskID: "b1-task-b"}, msg)
}

func TestInboxEndsWithNewTaskRow(t *testing.T) {
	m := newView(t, testutil.NewBoard("b1", "alpha"))

	m, _ = press(t, m, runes("j"))
	_, ok := m.FocusedTask()
	assert.False(t, ok)

	_, msg := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, NewTaskMsg{}, msg)

	// Other columns have no such row.
	m, _ = press(t, m, runes("l"))
	_, row := m.Focus()
	assert.Equal(t, 0, row)
}

func TestDragRightKeepsFocusOnCard(t *testing.T) {
	m := newView(t, testutil.NewBoard("b1", "alpha", "beta"))

	m, msg := press(t, m, runes("L"))
	require.IsType(t, MoveTaskMsg{}, msg)
	assert.Equal(t, dnd.Move{
		TaskID:   "b1-task-a",
		FromCol:  0,
		ToCol:    1,
		ColumnID: "b1-ready",
		Order:    0,
	}, msg.(MoveTaskMsg).Move)

	col, row := m.Focus()
	assert.Equal(t, 1, col)
	assert.Equal(t, 0, row)
	task, ok := m.FocusedTask()
	require.True(t, ok)
	assert.Equal(t, "b1-task-a", task.ID)
}

func TestDragDownSwapsWithNeighbour(t *testing.T) {
	m := newView(t, testutil.NewBoard("b1", "alpha", "beta"))

	m, msg := press(t, m, runes("J"))
	require.IsType(t, MoveTaskMsg{}, msg)
	assert.Equal(t, 1, msg.(MoveTaskMsg).Move.Order)

	_, row := m.Focus()
	assert.Equal(t, 1, row)
}

func TestDragAtEdgeDoesNothing(t *testing.T) {
	m := newView(t, testutil.NewBoard("b1", "alpha"))

	_, msg := press(t, m, runes("K"))
	assert.Nil(t, msg)
	_, msg = press(t, m, runes("H"))
	assert.Nil(t, msg)
}

func TestDeleteCarriesColumn(t *testing.T) {
	b := testutil.NewBoard("b1")
	b.Columns[2].Tasks = []model.Task{{ID: "t9", Title: "in progress"}}
	m := newView(t, b)

	m, _ = press(t, m, runes("l"))
	m, _ = press(t, m, runes("l"))
	_, msg := press(t, m, runes("d"))

	assert.Equal(t, DeleteTaskMsg{ColNo: 2, TaskID: "t9"}, msg)
}

func TestSetBoardKeepsFocusOnSameBoard(t *testing.T) {
	b := testutil.NewBoard("b1", "alpha", "beta", "gamma")
	m := newView(t, b)
	m, _ = press(t, m, runes("j"))
	m, _ = press(t, m, runes("j"))

	// A reload of the same board with one task gone clamps the cursor.
	smaller := b.WithoutTask(0, "b1-task-c")
	m.SetBoard(&smaller)
	_, row := m.Focus()
	assert.Equal(t, 2, row, "row 2 is now the new-task row")

	other := testutil.NewBoard("b2", "x")
	m.SetBoard(&other)
	col, row := m.Focus()
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)
}

func TestViewWithoutBoard(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 10)
	assert.Contains(t, m.View(), "No board selected")

	m.SetBoard(nil)
	_, cmd := m.Update(runes("j"))
	assert.Nil(t, cmd)
}

func TestViewShowsColumnsAndProgress(t *testing.T) {
	b := testutil.NewBoard("b1", "alpha")
	b.Columns[0].Tasks[0].Subtasks = []model.Subtask{
		{ID: "s1", Title: "one", Done: true},
		{ID: "s2", Title: "two"},
	}
	out := newView(t, b).View()

	for _, name := range []string{"inbox", "ready", "go!", "done"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "1 of 2 subtasks")
	assert.Contains(t, out, newTaskLabel)
}
