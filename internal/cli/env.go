package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/cache"
	"github.com/nhle/kanban/internal/credential"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/internal/mutation"
	"github.com/nhle/kanban/internal/session"
	"github.com/nhle/kanban/internal/state"
)

// env is everything a command needs to talk to the service.
type env struct {
	cfg       *model.AppConfig
	log       *log.Logger
	client    *api.Client
	session   *session.Manager
	cache     cache.Store
	store     *state.Store
	mutations *mutation.Service
	closers   []io.Closer
}

// loadConfig reads the config file and applies the --server flag.
func loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = strings.TrimRight(serverURL, "/")
	}
	return cfg, nil
}

// newLogger writes to the configured log file. The terminal belongs to
// the UI, so nothing is logged to stderr.
func newLogger(cfg model.LogConfig) (*log.Logger, io.Closer, error) {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); (err == nil && dbg) || verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// setup wires the client, the session, the cache and the state store.
func setup(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: logger, closers: []io.Closer{logFile}}

	e.client = api.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout(),
		api.WithMaxRetries(cfg.Server.MaxRetries))

	creds, err := credential.Open(filepath.Dir(configPath))
	if err != nil {
		e.Close()
		return nil, err
	}
	e.session = session.NewManager(e.client.Session(), creds, e.client, session.WithLogger(logger))

	c, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		// The cache only helps offline; run without it.
		logger.WithError(err).WithField("backend", cfg.Cache.Backend).Warn("cache unavailable")
		c = cache.Nop{}
	}
	e.cache = c
	e.closers = append(e.closers, c)

	e.store = state.New(e.client.Boards(), c, logger)
	e.mutations = mutation.NewService(e.store,
		e.client.Boards(), e.client.Tasks(), e.client.Subtasks(), logger)

	logger.WithFields(log.Fields{
		"server": cfg.Server.BaseURL,
		"cache":  cfg.Cache.Backend,
	}).Debug("started")
	return e, nil
}

// Close releases the cache and the log file, in reverse order.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i].Close()
	}
}
