package boardform

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/model"
)

func submit(t *testing.T, m Model) (Model, tea.Msg) {
	t.Helper()
	m.form.State = huh.StateCompleted
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	return m, cmd()
}

func TestStartEditFillsName(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.BoardSummary{ID: "b1", Name: "Roadmap"})

	assert.Equal(t, "Roadmap", m.fb.name)
	assert.Contains(t, m.View(), "Edit Board")
}

func TestStartCreateClearsPreviousInput(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.BoardSummary{ID: "b1", Name: "Roadmap"})
	m.ShowErrors(map[string]string{"name": "Board name already taken."})

	m.StartCreate()

	assert.Empty(t, m.fb.name)
	out := m.View()
	assert.Contains(t, out, "New Board")
	assert.NotContains(t, out, "already taken")
}

func TestSubmitCarriesBoardID(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.BoardSummary{ID: "b1", Name: "Roadmap"})
	m.fb.name = "Platform"

	m, msg := submit(t, m)
	assert.Equal(t, SubmitMsg{ID: "b1", Name: "Platform"}, msg)
	assert.True(t, m.Pending())
	assert.Contains(t, m.View(), "Saving...")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "no second submit while saving")
}

func TestShowErrorsKeepsInput(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.name = "Roadmap"
	m, msg := submit(t, m)
	require.Equal(t, SubmitMsg{Name: "Roadmap"}, msg)

	m.ShowErrors(map[string]string{"name": "Board name already taken."})

	assert.False(t, m.Pending())
	assert.Equal(t, "Roadmap", m.fb.name)
	assert.Equal(t, huh.StateNormal, m.form.State)
	out := m.View()
	assert.Contains(t, out, "Board name already taken.")
	assert.NotContains(t, out, "Saving...")
}
