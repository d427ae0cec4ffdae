package api

import "github.com/nhle/kanban/internal/model"

// BoardPostReq is the body of POST /boards.
type BoardPostReq struct {
	Name   string `json:"name"`
	TeamID string `json:"team_id"`
}

// BoardPostResp is the body returned by POST /boards.
type BoardPostResp struct {
	ID string `json:"id"`
}

// BoardPatchReq is the body of PATCH /boards/:id.
type BoardPatchReq struct {
	Name string `json:"name"`
}

// TaskPostReq is the body of POST /tasks. Column is the column number
// (0 = inbox) and Subtasks holds the titles of the new subtasks.
type TaskPostReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Board       string   `json:"board"`
	Column      int      `json:"column"`
	Subtasks    []string `json:"subtasks"`
}

// TaskPostResp is the body returned by POST /tasks.
type TaskPostResp struct {
	ID string `json:"id"`
}

// TaskPatchReq is the body of an edit PATCH /tasks/:id.
type TaskPatchReq struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Column      string          `json:"column"`
	Subtasks    []model.Subtask `json:"subtasks"`
}

// TaskMoveReq is the body of a move PATCH /tasks/:id: the destination
// column id and the task's new order within it.
type TaskMoveReq struct {
	Column string `json:"column"`
	Order  int    `json:"order"`
}

// SubtaskPatchReq is the body of PATCH /subtasks/:id.
type SubtaskPatchReq struct {
	Done bool `json:"done"`
}

// LoginReq is the body of POST /login.
type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResp is the body returned by POST /login.
type LoginResp struct {
	Token string `json:"token"`
}
