package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nhle/kanban/internal/model"
)

// BoardsClient calls the /boards endpoints.
type BoardsClient struct{ c *Client }

// List returns the boards of the caller's team.
func (b *BoardsClient) List(ctx context.Context) ([]model.BoardSummary, error) {
	var out []model.BoardSummary
	if err := b.c.do(ctx, http.MethodGet, "/boards", nil, &out); err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	return out, nil
}

// Get returns a board with its columns and tasks.
func (b *BoardsClient) Get(ctx context.Context, id string) (*model.Board, error) {
	var out model.Board
	if err := b.c.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("getting board %s: %w", id, err)
	}
	return &out, nil
}

// Post creates a board.
func (b *BoardsClient) Post(ctx context.Context, req BoardPostReq) (BoardPostResp, error) {
	var out BoardPostResp
	if err := b.c.do(ctx, http.MethodPost, "/boards", req, &out); err != nil {
		return out, fmt.Errorf("creating board: %w", err)
	}
	return out, nil
}

// Patch renames a board.
func (b *BoardsClient) Patch(ctx context.Context, id string, req BoardPatchReq) error {
	if err := b.c.do(ctx, http.MethodPatch, "/boards/"+url.PathEscape(id), req, nil); err != nil {
		return fmt.Errorf("editing board %s: %w", id, err)
	}
	return nil
}

// Delete removes a board.
func (b *BoardsClient) Delete(ctx context.Context, id string) error {
	if err := b.c.do(ctx, http.MethodDelete, "/boards/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting board %s: %w", id, err)
	}
	return nil
}

// TasksClient calls the /tasks endpoints.
type TasksClient struct{ c *Client }

// Post creates a task.
func (t *TasksClient) Post(ctx context.Context, req TaskPostReq) (TaskPostResp, error) {
	var out TaskPostResp
	if err := t.c.do(ctx, http.MethodPost, "/tasks", req, &out); err != nil {
		return out, fmt.Errorf("creating task: %w", err)
	}
	return out, nil
}

// Patch edits a task's title, description and subtasks.
func (t *TasksClient) Patch(ctx context.Context, id string, req TaskPatchReq) error {
	if err := t.c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), req, nil); err != nil {
		return fmt.Errorf("editing task %s: %w", id, err)
	}
	return nil
}

// Move places a task at a new column and order.
func (t *TasksClient) Move(ctx context.Context, id string, req TaskMoveReq) error {
	if err := t.c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), req, nil); err != nil {
		return fmt.Errorf("moving task %s: %w", id, err)
	}
	return nil
}

// Delete removes a task.
func (t *TasksClient) Delete(ctx context.Context, id string) error {
	if err := t.c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// SubtasksClient calls the /subtasks endpoints.
type SubtasksClient struct{ c *Client }

// Patch sets a subtask's done flag.
func (s *SubtasksClient) Patch(ctx context.Context, id string, req SubtaskPatchReq) error {
	if err := s.c.do(ctx, http.MethodPatch, "/subtasks/"+url.PathEscape(id), req, nil); err != nil {
		return fmt.Errorf("updating subtask %s: %w", id, err)
	}
	return nil
}

// SessionClient calls the /login endpoint.
type SessionClient struct{ c *Client }

// Login exchanges credentials for a session token.
func (s *SessionClient) Login(ctx context.Context, req LoginReq) (LoginResp, error) {
	var out LoginResp
	if err := s.c.do(ctx, http.MethodPost, "/login", req, &out); err != nil {
		return out, fmt.Errorf("logging in: %w", err)
	}
	return out, nil
}
