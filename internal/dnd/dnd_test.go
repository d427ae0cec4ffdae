package dnd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/tests/testutil"
)

func TestComputeSideways(t *testing.T) {
	b := testutil.NewBoard("b", "a", "b")
	b.Columns[1].Tasks = []model.Task{{ID: "r1", Order: 0}}

	m, err := Compute(&b, "b-task-a", Right)
	require.NoError(t, err)
	assert.Equal(t, Move{TaskID: "b-task-a", FromCol: 0, ToCol: 1, ColumnID: "b-ready", Order: 1}, m)

	_, err = Compute(&b, "b-task-a", Left)
	assert.True(t, errors.Is(err, ErrNoMove))
}

func TestComputeRightEdge(t *testing.T) {
	b := testutil.NewBoard("b")
	b.Columns[3].Tasks = []model.Task{{ID: "d1"}}
	_, err := Compute(&b, "d1", Right)
	assert.True(t, errors.Is(err, ErrNoMove))

	m, err := Compute(&b, "d1", Left)
	require.NoError(t, err)
	assert.Equal(t, "b-go!", m.ColumnID)
	assert.Equal(t, 0, m.Order)
}

func TestComputeVertical(t *testing.T) {
	b := testutil.NewBoard("b", "a", "b", "c")

	m, err := Compute(&b, "b-task-b", Up)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Order)
	assert.Equal(t, "b-inbox", m.ColumnID)

	m, err = Compute(&b, "b-task-b", Down)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Order)

	_, err = Compute(&b, "b-task-a", Up)
	assert.True(t, errors.Is(err, ErrNoMove))
	_, err = Compute(&b, "b-task-c", Down)
	assert.True(t, errors.Is(err, ErrNoMove))
}

func TestComputeUnknownTask(t *testing.T) {
	b := testutil.NewBoard("b")
	_, err := Compute(&b, "nope", Up)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoMove))

	_, err = Compute(nil, "nope", Up)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	b := testutil.NewBoard("b", "a", "b")
	m, err := Compute(&b, "b-task-b", Up)
	require.NoError(t, err)

	next, ok := Apply(b, m)
	require.True(t, ok)
	sorted := next.Columns[0].SortedTasks()
	assert.Equal(t, "b-task-b", sorted[0].ID)
	assert.Equal(t, "b-task-a", sorted[1].ID)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "Direction(9)", Direction(9).String())
}
