// Package dnd computes keyboard drag-and-drop moves on a board.
package dnd

import (
	"errors"
	"fmt"

	"github.com/nhle/kanban/internal/model"
)

// Direction is the way a card is dragged.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ErrNoMove is returned when a card is already at the edge it is dragged
// towards.
var ErrNoMove = errors.New("task cannot move further")

// Move describes where a dragged card lands. ColumnID and Order are what
// the service is told; FromCol and ToCol are column numbers.
type Move struct {
	TaskID   string
	FromCol  int
	ToCol    int
	ColumnID string
	Order    int
}

// Compute returns the move that drags taskID one step in dir. Dragging
// sideways appends the card to the end of the neighbouring column;
// dragging up or down swaps it with its neighbour.
func Compute(b *model.Board, taskID string, dir Direction) (Move, error) {
	if b == nil {
		return Move{}, errors.New("no active board")
	}
	fromCol, _, ok := b.FindTask(taskID)
	if !ok {
		return Move{}, fmt.Errorf("task %s not on board %s", taskID, b.ID)
	}

	tasks := b.Columns[fromCol].SortedTasks()
	pos := 0
	for i, t := range tasks {
		if t.ID == taskID {
			pos = i
			break
		}
	}

	m := Move{TaskID: taskID, FromCol: fromCol}
	switch dir {
	case Left, Right:
		toCol := fromCol - 1
		if dir == Right {
			toCol = fromCol + 1
		}
		if _, err := model.ColumnName(toCol); err != nil || toCol >= len(b.Columns) {
			return Move{}, ErrNoMove
		}
		m.ToCol = toCol
		m.Order = len(b.Columns[toCol].Tasks)
	case Up, Down:
		next := pos - 1
		if dir == Down {
			next = pos + 1
		}
		if next < 0 || next >= len(tasks) {
			return Move{}, ErrNoMove
		}
		m.ToCol = fromCol
		m.Order = next
	default:
		return Move{}, fmt.Errorf("unknown direction %v", dir)
	}

	m.ColumnID = b.Columns[m.ToCol].ID
	return m, nil
}

// Apply returns the board as it looks after m.
func Apply(b model.Board, m Move) (model.Board, bool) {
	return b.WithTaskMoved(m.TaskID, m.ToCol, m.Order)
}
