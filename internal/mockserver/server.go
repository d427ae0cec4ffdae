// Package mockserver is an in-memory implementation of the board service
// REST API. It answers with the same validation messages and error bodies
// as the production service and is used for local development and tests.
package mockserver

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/model"
)

type account struct {
	password string
	teamID   string
	isAdmin  bool
}

type injected struct {
	status int
	body   map[string]string
}

// Server holds every board in memory. All handlers take the same lock.
type Server struct {
	echo     *echo.Echo
	secret   []byte
	tokenTTL time.Duration
	log      log.FieldLogger

	mu       sync.Mutex
	accounts map[string]account
	boards   map[string]model.Board
	created  map[string]int
	seq      int
	requests []string
	failures []injected
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing key for session tokens.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithLogger routes request logs to l.
func WithLogger(l log.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a server with no users and no boards.
func New(opts ...Option) *Server {
	s := &Server{
		secret:   []byte(uuid.NewString()),
		tokenTTL: 24 * time.Hour,
		log:      log.StandardLogger(),
		accounts: make(map[string]account),
		boards:   make(map[string]model.Board),
		created:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.record)
	s.echo = e
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.POST("/login", s.login)

	g := s.echo.Group("", s.authenticate)
	g.GET("/boards", s.listBoards)
	g.GET("/boards/:id", s.getBoard)
	g.POST("/boards", s.postBoard)
	g.PATCH("/boards/:id", s.patchBoard)
	g.DELETE("/boards/:id", s.deleteBoard)
	g.POST("/tasks", s.postTask)
	g.PATCH("/tasks/:id", s.patchTask)
	g.DELETE("/tasks/:id", s.deleteTask)
	g.PATCH("/subtasks/:id", s.patchSubtask)
}

// Handler returns the HTTP handler, for use with httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("mock server listening")
	return s.echo.Start(addr)
}

// Shutdown stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// AddUser registers an account.
func (s *Server) AddUser(username, password, teamID string, isAdmin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = account{password: password, teamID: teamID, isAdmin: isAdmin}
}

// SeedBoard creates an empty board for teamID and returns its ID.
func (s *Server) SeedBoard(teamID, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertBoard(teamID, name)
}

// SeedTask appends a task to column colNo of a board and returns its ID.
func (s *Server) SeedTask(boardID string, colNo int, title string, subtasks ...string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[boardID]
	if !ok || colNo < 0 || colNo >= len(b.Columns) {
		return ""
	}
	task := newTask(title, "", subtasks, len(b.Columns[colNo].Tasks))
	s.boards[boardID] = withTaskAppended(b, colNo, task)
	return task.ID
}

// Board returns a copy of a stored board.
func (s *Server) Board(id string) (model.Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[id]
	if !ok {
		return model.Board{}, false
	}
	return b.Clone(), true
}

// Requests returns "METHOD path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// FailNext makes the next request fail with status and a JSON body.
// Calls queue up: each request consumes one.
func (s *Server) FailNext(status int, body map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, injected{status: status, body: body})
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		s.mu.Lock()
		s.requests = append(s.requests, req.Method+" "+req.URL.Path)
		var fail *injected
		if len(s.failures) > 0 {
			f := s.failures[0]
			s.failures = s.failures[1:]
			fail = &f
		}
		s.mu.Unlock()

		start := time.Now()
		var err error
		if fail != nil {
			err = c.JSON(fail.status, fail.body)
		} else {
			err = next(c)
		}

		s.log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   c.Response().Status,
			"duration": time.Since(start),
		}).Debug("request")
		return err
	}
}

// insertBoard must be called with s.mu held.
func (s *Server) insertBoard(teamID, name string) string {
	b := model.Board{ID: uuid.NewString(), Name: name, TeamID: teamID}
	for i := 0; i < model.ColumnCount; i++ {
		colName, _ := model.ColumnName(i)
		b.Columns = append(b.Columns, model.Column{
			ID:    uuid.NewString(),
			Name:  colName,
			Order: i,
			Tasks: []model.Task{},
		})
	}
	s.boards[b.ID] = b
	s.seq++
	s.created[b.ID] = s.seq
	return b.ID
}

// teamBoards must be called with s.mu held. Boards come back in creation
// order.
func (s *Server) teamBoards(teamID string) []model.Board {
	var out []model.Board
	for _, b := range s.boards {
		if b.TeamID == teamID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.created[out[i].ID] < s.created[out[j].ID]
	})
	return out
}

// findTask must be called with s.mu held.
func (s *Server) findTask(teamID, taskID string) (model.Board, int, int, bool) {
	for _, b := range s.boards {
		if b.TeamID != teamID {
			continue
		}
		if colNo, idx, ok := b.FindTask(taskID); ok {
			return b, colNo, idx, true
		}
	}
	return model.Board{}, 0, 0, false
}

func errorBody(c echo.Context, status int, field, msg string) error {
	return c.JSON(status, map[string]string{field: msg})
}
