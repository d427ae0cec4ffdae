package testutil

import (
	"testing"

	"github.com/nhle/kanban/internal/cache"
	"github.com/nhle/kanban/internal/model"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *cache.SQLiteStore {
	t.Helper()

	s, err := cache.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewBoard returns a board with the four standard columns and the given
// task titles in its inbox column.
func NewBoard(id string, inbox ...string) model.Board {
	b := model.Board{ID: id, Name: "Board " + id, TeamID: "team-1"}
	for i := 0; i < model.ColumnCount; i++ {
		name, _ := model.ColumnName(i)
		b.Columns = append(b.Columns, model.Column{
			ID:    id + "-" + name,
			Name:  name,
			Order: i,
		})
	}
	for i, title := range inbox {
		b.Columns[0].Tasks = append(b.Columns[0].Tasks, model.Task{
			ID:    id + "-task-" + string(rune('a'+i)),
			Title: title,
			Order: i,
		})
	}
	return b
}
