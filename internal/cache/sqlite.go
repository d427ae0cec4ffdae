package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/kanban/internal/model"
)

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var v int
	if err := s.db.Get(&v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		currentVersion, err = s.SchemaVersion()
		if err != nil {
			return err
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveBoard replaces the stored snapshot of b.
func (s *SQLiteStore) SaveBoard(ctx context.Context, b model.Board) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling board %s: %w", b.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO board_snapshots (id, name, team_id, data, saved_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.TeamID, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving board %s: %w", b.ID, err)
	}
	return nil
}

// GetBoard returns the stored snapshot of a board.
func (s *SQLiteStore) GetBoard(ctx context.Context, id string) (*model.Board, error) {
	var data string
	err := s.db.GetContext(ctx, &data, "SELECT data FROM board_snapshots WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting board %s: %w", id, err)
	}

	var b model.Board
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, fmt.Errorf("unmarshaling board %s: %w", id, err)
	}
	return &b, nil
}

// DeleteBoard removes a board snapshot.
func (s *SQLiteStore) DeleteBoard(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM board_snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting board %s: %w", id, err)
	}
	return nil
}

// AppendNotification records a notification and prunes the oldest beyond
// MaxNotifications.
func (s *SQLiteStore) AppendNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notifications (id, headline, detail, created_at)
		VALUES (?, ?, ?, ?)`,
		n.ID, n.Headline, n.Detail, n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM notifications WHERE id NOT IN (
			SELECT id FROM notifications ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, MaxNotifications)
	if err != nil {
		return fmt.Errorf("pruning notifications: %w", err)
	}

	return tx.Commit()
}

// RecentNotifications returns up to limit notifications, newest first.
func (s *SQLiteStore) RecentNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = MaxNotifications
	}

	var out []model.Notification
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, headline, detail, created_at FROM notifications
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	return out, nil
}
