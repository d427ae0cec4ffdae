package board

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/theme"
)

// newTaskLabel is the affordance at the bottom of the inbox column.
const newTaskLabel = "+ new task"

// renderCard draws a task card: its title and, when it has subtasks, a
// done/total counter.
func renderCard(t model.Task, width int, focused bool) string {
	style := theme.CardStyle
	if focused {
		style = theme.FocusedCardStyle
	}
	// Border and padding take four cells.
	inner := width - 4
	if inner < 4 {
		inner = 4
	}

	body := truncate(t.Title, inner)
	if total := len(t.Subtasks); total > 0 {
		done := t.DoneCount()
		counter := theme.ProgressStyle(done, total).
			Render(fmt.Sprintf("%d of %d subtasks", done, total))
		body = lipgloss.JoinVertical(lipgloss.Left, body, counter)
	}
	return style.Width(width - 2).Render(body)
}

// renderColumn draws one column: a header and its cards in order. When
// focusRow is out of range no card is highlighted.
func renderColumn(col model.Column, width, height, focusRow int, showNew bool) string {
	header := theme.ColumnHeaderStyle(col.Name).
		Render(fmt.Sprintf("%s (%d)", col.Name, len(col.Tasks)))

	parts := []string{header}
	for i, t := range col.SortedTasks() {
		parts = append(parts, renderCard(t, width, i == focusRow))
	}
	if showNew {
		label := theme.HelpStyle.Render(newTaskLabel)
		if focusRow == len(col.Tasks) {
			label = theme.SelectedItemStyle.Render(newTaskLabel)
		}
		parts = append(parts, label)
	}

	return lipgloss.NewStyle().
		Width(width).
		MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
