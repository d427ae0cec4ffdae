// Package mutation carries out every change a user makes to boards,
// tasks and subtasks, and reconciles the shared state with the service's
// answer.
//
// Creating and editing are pessimistic: the request is sent first and the
// state is reloaded only once the service accepts it; a rejection leaves
// the form open with the user's input. Deleting, moving and toggling are
// optimistic: the new state is published before the request is sent and
// rolled back if the service refuses it.
//
// Submitting twice sends two requests. Nothing de-duplicates them.
package mutation

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/state"
)

// Field names used as FieldErrors keys.
const (
	FieldName     = "name"
	FieldTitle    = "title"
	FieldSubtasks = "subtasks"
)

// BoardsAPI is the subset of the API client used for boards.
type BoardsAPI interface {
	Post(ctx context.Context, req api.BoardPostReq) (api.BoardPostResp, error)
	Patch(ctx context.Context, id string, req api.BoardPatchReq) error
	Delete(ctx context.Context, id string) error
}

// TasksAPI is the subset of the API client used for tasks.
type TasksAPI interface {
	Post(ctx context.Context, req api.TaskPostReq) (api.TaskPostResp, error)
	Patch(ctx context.Context, id string, req api.TaskPatchReq) error
	Move(ctx context.Context, id string, req api.TaskMoveReq) error
	Delete(ctx context.Context, id string) error
}

// SubtasksAPI is the subset of the API client used for subtasks.
type SubtasksAPI interface {
	Patch(ctx context.Context, id string, req api.SubtaskPatchReq) error
}

// Result is what a form does after a submit: close, or stay open showing
// FieldErrors (which may be empty when the failure went to a
// notification).
type Result struct {
	Closed      bool
	FieldErrors map[string]string
}

// OK reports whether the mutation went through.
func (r Result) OK() bool { return r.Closed }

func closed() Result { return Result{Closed: true} }

func fieldError(field, msg string) Result {
	return Result{FieldErrors: map[string]string{field: msg}}
}

// Commit sends an optimistic mutation's request. It is safe to call from
// any goroutine.
type Commit func(ctx context.Context) Result

// Service performs mutations against the API and the state store.
type Service struct {
	store    *state.Store
	boards   BoardsAPI
	tasks    TasksAPI
	subtasks SubtasksAPI
	log      log.FieldLogger
}

// NewService creates a Service.
func NewService(
	store *state.Store,
	boards BoardsAPI,
	tasks TasksAPI,
	subtasks SubtasksAPI,
	logger log.FieldLogger,
) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{
		store:    store,
		boards:   boards,
		tasks:    tasks,
		subtasks: subtasks,
		log:      logger,
	}
}

// fail handles a rejected request: a message for field becomes an inline
// error, anything else becomes a notification.
func (s *Service) fail(err error, headline, field string, fields log.Fields) Result {
	s.log.WithFields(fields).WithError(err).Warn(strings.TrimSuffix(headline, "."))

	if field != "" {
		if msg := api.FieldError(err, field); msg != "" {
			return fieldError(field, msg)
		}
	}
	s.notifyErr(headline, err)
	return Result{}
}

// notifyErr shows the server's message, or "Server Error." when the
// response carried none or never arrived. The full error is in the log.
func (s *Service) notifyErr(headline string, err error) {
	s.store.Notify(headline, state.Detail(api.ServerMessage(err)))
}

func subtaskTitles(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, strings.TrimSpace(l))
		}
	}
	return out
}

func (s *Service) activeBoard() *model.Board {
	return s.store.ActiveBoard()
}
