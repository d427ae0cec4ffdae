package model

import "sort"

// Board is a team's Kanban board. Columns are kept in their fixed
// inbox/ready/go!/done order.
type Board struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TeamID  string   `json:"team_id"`
	Columns []Column `json:"columns"`
}

// BoardSummary is the list entry returned by GET /boards.
type BoardSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Column is one of the four stages a task passes through.
type Column struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
	Tasks []Task `json:"tasks"`
}

// Task is a card on the board. Order is a sort key local to its column.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	Subtasks    []Subtask `json:"subtasks"`
}

// Subtask is a checklist entry on a task.
type Subtask struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
	Done  bool   `json:"done"`
}

// Summary returns the list entry for b.
func (b Board) Summary() BoardSummary {
	return BoardSummary{ID: b.ID, Name: b.Name}
}

// Clone returns a deep copy of b.
func (b Board) Clone() Board {
	next := b
	next.Columns = make([]Column, len(b.Columns))
	for i, col := range b.Columns {
		tasks := make([]Task, len(col.Tasks))
		for j, t := range col.Tasks {
			t.Subtasks = append([]Subtask(nil), t.Subtasks...)
			tasks[j] = t
		}
		col.Tasks = tasks
		next.Columns[i] = col
	}
	return next
}

// ColumnIndex returns the position of the column with the given ID.
func (b Board) ColumnIndex(columnID string) (int, bool) {
	for i, col := range b.Columns {
		if col.ID == columnID {
			return i, true
		}
	}
	return 0, false
}

// SortedTasks returns a copy of the column's tasks ordered by Order.
func (c Column) SortedTasks() []Task {
	tasks := make([]Task, len(c.Tasks))
	copy(tasks, c.Tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Order < tasks[j].Order
	})
	return tasks
}

// SortedSubtasks returns a copy of the task's subtasks ordered by Order.
func (t Task) SortedSubtasks() []Subtask {
	subtasks := make([]Subtask, len(t.Subtasks))
	copy(subtasks, t.Subtasks)
	sort.SliceStable(subtasks, func(i, j int) bool {
		return subtasks[i].Order < subtasks[j].Order
	})
	return subtasks
}

// DoneCount returns how many subtasks are done.
func (t Task) DoneCount() int {
	n := 0
	for _, s := range t.Subtasks {
		if s.Done {
			n++
		}
	}
	return n
}

// FindTask locates a task by ID and returns its column number and its
// index within Column.Tasks.
func (b Board) FindTask(taskID string) (colNo int, index int, ok bool) {
	for i, col := range b.Columns {
		for j, t := range col.Tasks {
			if t.ID == taskID {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// Task returns the task with the given ID.
func (b Board) Task(taskID string) (Task, bool) {
	colNo, idx, ok := b.FindTask(taskID)
	if !ok {
		return Task{}, false
	}
	return b.Columns[colNo].Tasks[idx], true
}

// WithoutTask returns a board in which the task is removed from column
// colNo. Only the touched column gets a new task slice; b is not modified.
func (b Board) WithoutTask(colNo int, taskID string) Board {
	next := b
	next.Columns = make([]Column, len(b.Columns))
	for i, col := range b.Columns {
		if i != colNo {
			next.Columns[i] = col
			continue
		}
		tasks := make([]Task, 0, len(col.Tasks))
		for _, t := range col.Tasks {
			if t.ID != taskID {
				tasks = append(tasks, t)
			}
		}
		col.Tasks = tasks
		next.Columns[i] = col
	}
	return next
}

// WithTaskMoved returns a board in which the task sits at position toOrder
// of column toCol. Both the source and the destination column are
// renumbered so that Order equals the position in the column.
func (b Board) WithTaskMoved(taskID string, toCol, toOrder int) (Board, bool) {
	fromCol, idx, ok := b.FindTask(taskID)
	if !ok || toCol < 0 || toCol >= len(b.Columns) {
		return b, false
	}
	task := b.Columns[fromCol].Tasks[idx]

	next := b.WithoutTask(fromCol, taskID)
	if fromCol != toCol {
		next.Columns[fromCol].Tasks = renumber(next.Columns[fromCol].SortedTasks())
	}

	dest := next.Columns[toCol].SortedTasks()
	if toOrder < 0 {
		toOrder = 0
	}
	if toOrder > len(dest) {
		toOrder = len(dest)
	}
	dest = append(dest[:toOrder], append([]Task{task}, dest[toOrder:]...)...)
	next.Columns[toCol].Tasks = renumber(dest)

	return next, true
}

// WithSubtaskToggled returns a board in which the subtask's Done flag is
// flipped.
func (b Board) WithSubtaskToggled(taskID, subtaskID string) (Board, bool) {
	colNo, idx, ok := b.FindTask(taskID)
	if !ok {
		return b, false
	}
	task := b.Columns[colNo].Tasks[idx]

	found := false
	subtasks := make([]Subtask, len(task.Subtasks))
	for i, s := range task.Subtasks {
		if s.ID == subtaskID {
			s.Done = !s.Done
			found = true
		}
		subtasks[i] = s
	}
	if !found {
		return b, false
	}
	task.Subtasks = subtasks

	next := b
	next.Columns = make([]Column, len(b.Columns))
	copy(next.Columns, b.Columns)
	tasks := make([]Task, len(b.Columns[colNo].Tasks))
	copy(tasks, b.Columns[colNo].Tasks)
	tasks[idx] = task
	next.Columns[colNo].Tasks = tasks

	return next, true
}

// renumber assigns Order = position, in place, and returns tasks.
func renumber(tasks []Task) []Task {
	for i := range tasks {
		tasks[i].Order = i
	}
	return tasks
}
