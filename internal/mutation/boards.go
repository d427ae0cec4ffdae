package mutation

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/validate"
)

// CreateBoard creates a board for the user's team and makes it the active
// board.
func (s *Service) CreateBoard(ctx context.Context, name string) Result {
	if msg := validate.BoardName(name); msg != "" {
		return fieldError(FieldName, msg)
	}

	resp, err := s.boards.Post(ctx, api.BoardPostReq{
		Name:   strings.TrimSpace(name),
		TeamID: s.store.User().TeamID,
	})
	if err != nil {
		return s.fail(err, "Unable to create board.", FieldName, log.Fields{"name": name})
	}

	if err := s.store.LoadBoard(ctx, resp.ID); err != nil {
		s.notifyErr("Unable to load board.", err)
	}
	if err := s.store.LoadBoards(ctx); err != nil {
		s.log.WithError(err).Warn("reloading board list")
	}
	return closed()
}

// EditBoard renames a board.
func (s *Service) EditBoard(ctx context.Context, id, name string) Result {
	if msg := validate.BoardName(name); msg != "" {
		return fieldError(FieldName, msg)
	}

	err := s.boards.Patch(ctx, id, api.BoardPatchReq{Name: strings.TrimSpace(name)})
	if err != nil {
		return s.fail(err, "Unable to edit board.", FieldName, log.Fields{"board_id": id})
	}

	if active := s.activeBoard(); active != nil && active.ID == id {
		if err := s.store.ReloadActiveBoard(ctx); err != nil {
			s.log.WithError(err).WithField("board_id", id).Warn("reloading board")
		}
	}
	if err := s.store.LoadBoards(ctx); err != nil {
		s.log.WithError(err).Warn("reloading board list")
	}
	return closed()
}

// BeginDeleteBoard removes the board from the list (and from the screen,
// if it is active) and returns the request that confirms it. When the
// active board is deleted the first remaining board is loaded.
func (s *Service) BeginDeleteBoard(id string) Commit {
	prevBoards := s.store.Boards()
	prevActive := s.activeBoard()

	next := make([]model.BoardSummary, 0, len(prevBoards))
	for _, b := range prevBoards {
		if b.ID != id {
			next = append(next, b)
		}
	}
	s.store.SetBoards(next)
	wasActive := prevActive != nil && prevActive.ID == id
	if wasActive {
		s.store.SetActiveBoard(nil)
	}

	return func(ctx context.Context) Result {
		if err := s.boards.Delete(ctx, id); err != nil {
			s.store.SetBoards(prevBoards)
			if wasActive {
				s.store.SetActiveBoard(prevActive)
			}
			return s.fail(err, "Unable to delete board.", "", log.Fields{"board_id": id})
		}

		s.store.ForgetBoard(ctx, id)
		if wasActive && len(next) > 0 {
			if err := s.store.LoadBoard(ctx, next[0].ID); err != nil {
				s.notifyErr("Unable to load board.", err)
			}
		}
		return closed()
	}
}
