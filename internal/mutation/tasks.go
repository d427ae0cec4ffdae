package mutation

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/dnd"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/validate"
)

// TaskInput is what the task form submits. Subtasks holds one title per
// entry; blank entries are dropped.
type TaskInput struct {
	Title       string
	Description string
	Subtasks    []string
}

func (in TaskInput) validate() (Result, bool) {
	if msg := validate.TaskTitle(in.Title); msg != "" {
		return fieldError(FieldTitle, msg), false
	}
	for _, st := range subtaskTitles(in.Subtasks) {
		if msg := validate.SubtaskTitle(st); msg != "" {
			return fieldError(FieldSubtasks, msg), false
		}
	}
	return Result{}, true
}

func (s *Service) taskFailure(err error, headline string, fields log.Fields) Result {
	if msg := api.FieldError(err, FieldSubtasks); msg != "" {
		s.log.WithFields(fields).WithError(err).Warn(strings.TrimSuffix(headline, "."))
		return fieldError(FieldSubtasks, msg)
	}
	return s.fail(err, headline, FieldTitle, fields)
}

// CreateTask adds a task to the inbox column of the active board.
func (s *Service) CreateTask(ctx context.Context, in TaskInput) Result {
	if res, ok := in.validate(); !ok {
		return res
	}
	board := s.activeBoard()
	if board == nil {
		s.store.Notify("Unable to create task.", "No board is selected.")
		return Result{}
	}

	_, err := s.tasks.Post(ctx, api.TaskPostReq{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Board:       board.ID,
		Column:      0,
		Subtasks:    subtaskTitles(in.Subtasks),
	})
	if err != nil {
		return s.taskFailure(err, "Unable to create task.", log.Fields{"board_id": board.ID})
	}

	if err := s.store.ReloadActiveBoard(ctx); err != nil {
		s.notifyErr("Unable to load board.", err)
	}
	return closed()
}

// EditTask updates a task's title, description and subtasks. Subtasks
// whose title is unchanged keep their id and done flag.
func (s *Service) EditTask(ctx context.Context, taskID string, in TaskInput) Result {
	if res, ok := in.validate(); !ok {
		return res
	}
	board := s.activeBoard()
	if board == nil {
		s.store.Notify("Unable to edit task.", "No board is selected.")
		return Result{}
	}
	colNo, idx, ok := board.FindTask(taskID)
	if !ok {
		s.store.Notify("Unable to edit task.", "Task not found.")
		return Result{}
	}
	current := board.Columns[colNo].Tasks[idx]

	err := s.tasks.Patch(ctx, taskID, api.TaskPatchReq{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Column:      board.Columns[colNo].ID,
		Subtasks:    mergeSubtasks(current.SortedSubtasks(), subtaskTitles(in.Subtasks)),
	})
	if err != nil {
		return s.taskFailure(err, "Unable to edit task.", log.Fields{"task_id": taskID})
	}

	if err := s.store.ReloadActiveBoard(ctx); err != nil {
		s.notifyErr("Unable to load board.", err)
	}
	return closed()
}

// mergeSubtasks pairs each title with an existing subtask of the same
// title, in order, so ids and done flags survive an edit.
func mergeSubtasks(existing []model.Subtask, titles []string) []model.Subtask {
	used := make([]bool, len(existing))
	out := make([]model.Subtask, 0, len(titles))
	for i, title := range titles {
		st := model.Subtask{Title: title, Order: i}
		for j, e := range existing {
			if !used[j] && e.Title == title {
				used[j] = true
				st.ID = e.ID
				st.Done = e.Done
				break
			}
		}
		out = append(out, st)
	}
	return out
}

// BeginDeleteTask removes the task from column colNo of the active board
// and returns the request that confirms it.
func (s *Service) BeginDeleteTask(colNo int, taskID string) Commit {
	prev := s.activeBoard()
	if prev != nil && colNo >= 0 && colNo < len(prev.Columns) {
		next := prev.WithoutTask(colNo, taskID)
		s.store.SetActiveBoard(&next)
	}

	return func(ctx context.Context) Result {
		if err := s.tasks.Delete(ctx, taskID); err != nil {
			s.store.SetActiveBoard(prev)
			return s.fail(err, "Unable to delete task.", "", log.Fields{"task_id": taskID})
		}
		return closed()
	}
}

// BeginMoveTask publishes the board with the card moved and returns the
// request that tells the service.
func (s *Service) BeginMoveTask(m dnd.Move) Commit {
	prev := s.activeBoard()
	if prev != nil {
		if next, ok := dnd.Apply(*prev, m); ok {
			s.store.SetActiveBoard(&next)
		}
	}

	return func(ctx context.Context) Result {
		err := s.tasks.Move(ctx, m.TaskID, api.TaskMoveReq{Column: m.ColumnID, Order: m.Order})
		if err != nil {
			s.store.SetActiveBoard(prev)
			return s.fail(err, "Unable to move task.", "", log.Fields{
				"task_id": m.TaskID,
				"column":  m.ColumnID,
				"order":   m.Order,
			})
		}
		return closed()
	}
}

// BeginToggleSubtask flips a subtask's done flag on screen and returns the
// request that saves it.
func (s *Service) BeginToggleSubtask(taskID, subtaskID string) Commit {
	prev := s.activeBoard()
	done := false
	if prev != nil {
		if next, ok := prev.WithSubtaskToggled(taskID, subtaskID); ok {
			if task, found := next.Task(taskID); found {
				for _, st := range task.Subtasks {
					if st.ID == subtaskID {
						done = st.Done
					}
				}
			}
			s.store.SetActiveBoard(&next)
		}
	}

	return func(ctx context.Context) Result {
		err := s.subtasks.Patch(ctx, subtaskID, api.SubtaskPatchReq{Done: done})
		if err != nil {
			s.store.SetActiveBoard(prev)
			return s.fail(err, "Unable to update subtask.", "", log.Fields{
				"task_id":    taskID,
				"subtask_id": subtaskID,
			})
		}
		return closed()
	}
}
