package mockserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/validate"
)

const msgBoardExists = "A board with that name already exists."

func (s *Server) listBoards(c echo.Context) error {
	cl := claimsOf(c)

	s.mu.Lock()
	boards := s.teamBoards(cl.TeamID)
	s.mu.Unlock()

	out := make([]model.BoardSummary, 0, len(boards))
	for _, b := range boards {
		out = append(out, b.Summary())
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getBoard(c echo.Context) error {
	cl := claimsOf(c)

	s.mu.Lock()
	b, ok := s.boards[c.Param("id")]
	s.mu.Unlock()
	if !ok || b.TeamID != cl.TeamID {
		return errorBody(c, http.StatusNotFound, "error", "Board not found.")
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) postBoard(c echo.Context) error {
	cl := claimsOf(c)
	if !cl.IsAdmin {
		return errorBody(c, http.StatusForbidden, "error", "Only team admins can create boards.")
	}

	var req api.BoardPostReq
	if err := c.Bind(&req); err != nil {
		return errorBody(c, http.StatusBadRequest, "error", "Invalid request body.")
	}
	if msg := validate.BoardName(req.Name); msg != "" {
		return errorBody(c, http.StatusBadRequest, "name", msg)
	}
	if req.TeamID != "" && req.TeamID != cl.TeamID {
		return errorBody(c, http.StatusForbidden, "error", "You are not a member of that team.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(cl.TeamID, req.Name, "") {
		return errorBody(c, http.StatusBadRequest, "name", msgBoardExists)
	}
	id := s.insertBoard(cl.TeamID, strings.TrimSpace(req.Name))
	return c.JSON(http.StatusCreated, api.BoardPostResp{ID: id})
}

func (s *Server) patchBoard(c echo.Context) error {
	cl := claimsOf(c)
	if !cl.IsAdmin {
		return errorBody(c, http.StatusForbidden, "error", "Only team admins can edit boards.")
	}

	var req api.BoardPatchReq
	if err := c.Bind(&req); err != nil {
		return errorBody(c, http.StatusBadRequest, "error", "Invalid request body.")
	}
	if msg := validate.BoardName(req.Name); msg != "" {
		return errorBody(c, http.StatusBadRequest, "name", msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	b, ok := s.boards[id]
	if !ok || b.TeamID != cl.TeamID {
		return errorBody(c, http.StatusNotFound, "error", "Board not found.")
	}
	if s.nameTaken(cl.TeamID, req.Name, id) {
		return errorBody(c, http.StatusBadRequest, "name", msgBoardExists)
	}
	b.Name = strings.TrimSpace(req.Name)
	s.boards[id] = b
	return c.NoContent(http.StatusOK)
}

func (s *Server) deleteBoard(c echo.Context) error {
	cl := claimsOf(c)
	if !cl.IsAdmin {
		return errorBody(c, http.StatusForbidden, "error", "Only team admins can delete boards.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	b, ok := s.boards[id]
	if !ok || b.TeamID != cl.TeamID {
		return errorBody(c, http.StatusNotFound, "error", "Board not found.")
	}
	delete(s.boards, id)
	delete(s.created, id)
	return c.NoContent(http.StatusOK)
}

func (s *Server) postTask(c echo.Context) error {
	cl := claimsOf(c)
	if !cl.IsAdmin {
		return errorBody(c, http.StatusForbidden, "error", "Only team admins can create tasks.")
	}

	var req api.TaskPostReq
	if err := c.Bind(&req); err != nil {
		return errorBody(c, http.StatusBadRequest, "error", "Invalid request body.")
	}
	if msg := validate.TaskTitle(req.Title); msg != "" {
		return errorBody(c, http.StatusBadRequest, "title", msg)
	}
	for _, st := range req.Subtasks {
		if msg := validate.SubtaskTitle(st); msg != "" {
			return errorBody(c, http.StatusBadRequest, "subtasks", msg)
		}
	}
	if _, err := model.ColumnName(req.Column); err != nil {
		return errorBody(c, http.StatusBadRequest, "error", "Invalid column number.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[req.Board]
	if !ok || b.TeamID != cl.TeamID {
		return errorBody(c, http.StatusNotFound, "error", "Board not found.")
	}
	task := newTask(req.Title, req.Description, req.Subtasks, len(b.Columns[req.Column].Tasks))
	s.boards[b.ID] = withTaskAppended(b, req.Column, task)
	return c.JSON(http.StatusCreated, api.TaskPostResp{ID: task.ID})
}

// taskPatch accepts both edit and move bodies; a present order marks a
// move.
type taskPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Column      *string          `json:"column"`
	Order       *int             `json:"order"`
	Subtasks    *[]model.Subtask `json:"subtasks"`
}

func (s *Server) patchTask(c echo.Context) error {
	cl := claimsOf(c)
	if !cl.IsAdmin {
		return errorBody(c, http.StatusForbidden, "error", "Only team admins can edit tasks.")
	}

	var req taskPatch
	if err := c.Bind(&req); err != nil {
		return errorBody(c, http.StatusBadRequest, "error", "Invalid request body.")
	}

	if req.Order != nil {
		return s.moveTask(c, cl, req)
	}

	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	if msg := validate.TaskTitle(title); msg != "" {
		return errorBody(c, http.StatusBadRequest, "title", msg)
	}
	var subtasks []model.Subtask
	if req.Subtasks != nil {
		subtasks = *req.Subtasks
	}
	for _, st := range subtasks {
		if msg := validate.SubtaskTitle(st.Title); msg != "" {
			return errorBody(c, http.StatusBadRequest, "subtasks", msg)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, colNo, idx, ok := s.findTask(cl.TeamID, c.Param("id"))
	if !ok {
		return errorBody(c, http.StatusNotFound, "error", "Task not found.")
	}

	task := b.Columns[colNo].Tasks[idx]
	task.Title = strings.TrimSpace(title)
	if req.Description != nil {
		task.Description = *req.Description
	}
	task.Subtasks = make([]model.Subtask, len(subtasks))
	for i, st := range subtasks {
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		st.Order = i
		task.Subtasks[i] = st
	}
	b = withTaskReplaced(b, colNo, idx, task)

	if req.Column != nil && *req.Column != "" && *req.Column != b.Columns[colNo].ID {
		toCol, found := b.ColumnIndex(*req.Column)
		if !found {
			return errorBody(c, http.StatusBadRequest, "error", "Column not found.")
		}
		b, _ = b.WithTaskMoved(task.ID, toCol, len(b.Columns[toCol].Tasks))
	}

	s.boards[b.ID] = b
	return c.NoContent(http.StatusOK)
}

func (s *Server) moveTask(c echo.Context, cl *claims, req taskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _, _, ok := s.findTask(cl.TeamID, c.Param("id"))
	if !ok {
		return errorBody(c, http.StatusNotFound, "error", "Task not found.")
	}
	if req.Column == nil {
		return errorBody(c, http.StatusBadRequest, "error", "Column not found.")
	}
	toCol, found := b.ColumnIndex(*req.Column)
	if !found {
		return errorBody(c, http.StatusBadRequest, "error", "Column not found.")
	}
	if *req.Order < 0 {
		return errorBody(c, http.StatusBadRequest, "error", "Order cannot be negative.")
	}
	next, _ := b.WithTaskMoved(c.Param("id"), toCol, *req.Order)
	s.boards[b.ID] = next
	return c.NoContent(http.StatusOK)
}

func (s *Server) deleteTask(c echo.Context) error {
	cl := claimsOf(c)
	if !cl.IsAdmin {
		return errorBody(c, http.StatusForbidden, "error", "Only team admins can delete tasks.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	b, colNo, _, ok := s.findTask(cl.TeamID, id)
	if !ok {
		return errorBody(c, http.StatusNotFound, "error", "Task not found.")
	}
	b = b.WithoutTask(colNo, id)
	b.Columns[colNo].Tasks = renumbered(b.Columns[colNo].SortedTasks())
	s.boards[b.ID] = b
	return c.NoContent(http.StatusOK)
}

func (s *Server) patchSubtask(c echo.Context) error {
	cl := claimsOf(c)
	if !cl.IsAdmin {
		return errorBody(c, http.StatusForbidden, "error", "Only team admins can edit subtasks.")
	}

	var req api.SubtaskPatchReq
	if err := c.Bind(&req); err != nil {
		return errorBody(c, http.StatusBadRequest, "error", "Invalid request body.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := c.Param("id")
	for _, b := range s.boards {
		if b.TeamID != cl.TeamID {
			continue
		}
		taskID, done, ok := findSubtask(b, id)
		if !ok {
			continue
		}
		if done != req.Done {
			s.boards[b.ID], _ = b.WithSubtaskToggled(taskID, id)
		}
		return c.NoContent(http.StatusOK)
	}
	return errorBody(c, http.StatusNotFound, "error", "Subtask not found.")
}

func findSubtask(b model.Board, id string) (taskID string, done, ok bool) {
	for _, col := range b.Columns {
		for _, t := range col.Tasks {
			for _, st := range t.Subtasks {
				if st.ID == id {
					return t.ID, st.Done, true
				}
			}
		}
	}
	return "", false, false
}

// nameTaken must be called with s.mu held.
func (s *Server) nameTaken(teamID, name, exceptID string) bool {
	name = strings.TrimSpace(name)
	for _, b := range s.boards {
		if b.TeamID == teamID && b.ID != exceptID && strings.EqualFold(b.Name, name) {
			return true
		}
	}
	return false
}

func newTask(title, description string, subtasks []string, order int) model.Task {
	t := model.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Order:       order,
		Subtasks:    make([]model.Subtask, 0, len(subtasks)),
	}
	for i, st := range subtasks {
		t.Subtasks = append(t.Subtasks, model.Subtask{
			ID:    uuid.NewString(),
			Title: strings.TrimSpace(st),
			Order: i,
		})
	}
	return t
}

func withTaskAppended(b model.Board, colNo int, task model.Task) model.Board {
	next := b.Clone()
	next.Columns[colNo].Tasks = append(next.Columns[colNo].Tasks, task)
	return next
}

func withTaskReplaced(b model.Board, colNo, idx int, task model.Task) model.Board {
	next := b.Clone()
	next.Columns[colNo].Tasks[idx] = task
	return next
}

func renumbered(tasks []model.Task) []model.Task {
	for i := range tasks {
		tasks[i].Order = i
	}
	return tasks
}
