package taskform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/model"
)

func TestSplitSubtasks(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, SplitSubtasks("one\n\n  two  \n"))
	assert.Empty(t, SplitSubtasks(" \n\t"))
}

func TestValidateSubtasksNamesLine(t *testing.T) {
	assert.NoError(t, validateSubtasks("a\nb"))

	err := validateSubtasks("fine\n" + strings.Repeat("x", 51))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestStartEditFillsBindings(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Task{
		ID:          "t1",
		Title:       "Ship",
		Description: "soon",
		Subtasks: []model.Subtask{
			{ID: "s2", Title: "second", Order: 1},
			{ID: "s1", Title: "first", Order: 0},
		},
	})

	assert.Equal(t, "Ship", m.fb.title)
	assert.Equal(t, "first\nsecond", m.fb.subtasks)
	assert.Contains(t, m.View(), "Edit Task")
}

func TestShowErrorsKeepsInput(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.title = "Taken"
	m.pending = true

	m.ShowErrors(map[string]string{"title": "Title already used."})

	assert.False(t, m.Pending())
	assert.Equal(t, "Taken", m.fb.title)
	assert.Contains(t, m.View(), "Title already used.")
}
