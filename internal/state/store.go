// Package state is the single place the application's shared state lives:
// the active board, the board list, the logged-in user and the
// notifications. Views read from it and mutations write to it; every write
// replaces a value instead of editing it, so a pointer handed to a reader
// never changes underneath it.
package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/cache"
	"github.com/nhle/kanban/internal/model"
)

const maxNotifications = 50

// BoardSource fetches boards from the service.
type BoardSource interface {
	List(ctx context.Context) ([]model.BoardSummary, error)
	Get(ctx context.Context, id string) (*model.Board, error)
}

// Store holds the application state. It is safe for concurrent use.
type Store struct {
	source BoardSource
	cache  cache.Store
	log    log.FieldLogger
	now    func() time.Time

	mu            sync.RWMutex
	active        *model.Board
	boards        []model.BoardSummary
	user          model.User
	notifications []model.Notification
	pending       int
	subscribers   []chan struct{}
}

// New creates a Store. A nil cache disables snapshots and the
// notification log.
func New(source BoardSource, c cache.Store, logger log.FieldLogger) *Store {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Store{source: source, cache: c, log: logger, now: time.Now}
}

// Subscribe returns a channel that receives a value after every write.
// Signals coalesce: a slow reader sees at least one signal per burst.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

// publish must be called with s.mu held.
func (s *Store) publish() {
	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// ActiveBoard returns the board on screen, or nil. Callers must not
// modify it.
func (s *Store) ActiveBoard() *model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActiveBoard publishes b as the board on screen.
func (s *Store) SetActiveBoard(b *model.Board) {
	s.mu.Lock()
	s.active = b
	s.publish()
	s.mu.Unlock()
}

// OfflineDetail is the notification detail when a cached board is shown
// in place of the service's copy.
const OfflineDetail = "The server could not be reached."

// LoadBoard fetches a board, makes it the active board and writes a
// snapshot to the cache. When the service cannot be reached and a
// snapshot exists, the snapshot is shown instead and the error is still
// returned.
func (s *Store) LoadBoard(ctx context.Context, id string) error {
	b, err := s.source.Get(ctx, id)
	if err != nil {
		if api.IsTransport(err) {
			if cached, cerr := s.cache.GetBoard(ctx, id); cerr == nil {
				s.log.WithError(err).WithField("board_id", id).Warn("service unreachable, using cached board")
				s.SetActiveBoard(cached)
				s.Notify("Showing cached board.", OfflineDetail)
			}
		}
		return err
	}

	s.SetActiveBoard(b)
	if err := s.cache.SaveBoard(ctx, *b); err != nil {
		s.log.WithError(err).WithField("board_id", id).Warn("caching board")
	}
	return nil
}

// ReloadActiveBoard fetches the active board again. It does nothing when
// no board is active.
func (s *Store) ReloadActiveBoard(ctx context.Context) error {
	active := s.ActiveBoard()
	if active == nil {
		return nil
	}
	return s.LoadBoard(ctx, active.ID)
}

// LoadBoards fetches the board list.
func (s *Store) LoadBoards(ctx context.Context) error {
	boards, err := s.source.List(ctx)
	if err != nil {
		return err
	}
	s.SetBoards(boards)
	return nil
}

// Boards returns the board list. Callers must not modify it.
func (s *Store) Boards() []model.BoardSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boards
}

// SetBoards replaces the board list.
func (s *Store) SetBoards(boards []model.BoardSummary) {
	s.mu.Lock()
	s.boards = boards
	s.publish()
	s.mu.Unlock()
}

// ForgetBoard drops a board's cached snapshot.
func (s *Store) ForgetBoard(ctx context.Context, id string) {
	if err := s.cache.DeleteBoard(ctx, id); err != nil {
		s.log.WithError(err).WithField("board_id", id).Warn("dropping cached board")
	}
}

// User returns the logged-in user.
func (s *Store) User() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser replaces the logged-in user.
func (s *Store) SetUser(u model.User) {
	s.mu.Lock()
	s.user = u
	s.publish()
	s.mu.Unlock()
}

// Reset clears everything but the notifications (on logout).
func (s *Store) Reset() {
	s.mu.Lock()
	s.active = nil
	s.boards = nil
	s.user = model.User{}
	s.publish()
	s.mu.Unlock()
}

// StartRequest counts a request as in flight until the returned func is
// called.
func (s *Store) StartRequest() (done func()) {
	s.mu.Lock()
	s.pending++
	s.publish()
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.pending--
			s.publish()
			s.mu.Unlock()
		})
	}
}

// Pending returns the number of requests in flight.
func (s *Store) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Notify records an operational error for the user and appends it to
// the cache's notification log.
func (s *Store) Notify(headline, detail string) model.Notification {
	n := model.Notification{
		ID:        uuid.New().String(),
		Headline:  headline,
		Detail:    detail,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	next := make([]model.Notification, 0, maxNotifications)
	next = append(next, s.notifications...)
	next = append(next, n)
	if len(next) > maxNotifications {
		next = next[len(next)-maxNotifications:]
	}
	s.notifications = next
	s.publish()
	s.mu.Unlock()

	s.log.WithFields(log.Fields{"headline": headline, "detail": detail}).Info("notification")
	if err := s.cache.AppendNotification(context.Background(), n); err != nil {
		s.log.WithError(err).Warn("saving notification")
	}
	return n
}

// Notifications returns the in-memory notifications, oldest first.
func (s *Store) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications
}

// LastNotification returns the newest notification.
func (s *Store) LastNotification() (model.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.notifications) == 0 {
		return model.Notification{}, false
	}
	return s.notifications[len(s.notifications)-1], true
}

// DismissNotification removes a notification from memory. The cache log
// keeps it.
func (s *Store) DismissNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.ID != id {
			next = append(next, n)
		}
	}
	s.notifications = next
	s.publish()
}

// History returns the persisted notification log, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]model.Notification, error) {
	out, err := s.cache.RecentNotifications(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading notification history: %w", err)
	}
	return out, nil
}

// Detail turns a message into the one-sentence form notifications use:
// an empty message becomes "Server Error." and a trailing period is added
// once.
func Detail(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "Server Error"
	}
	if strings.HasSuffix(msg, ".") {
		return msg
	}
	return msg + "."
}

// IsAuthError reports whether err means the session is no longer valid.
func IsAuthError(err error) bool {
	return errors.Is(err, api.ErrUnauthorized)
}
