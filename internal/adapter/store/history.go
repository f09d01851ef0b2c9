package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"canvas-ai/internal/domain"
)

// DefaultRecentLimit is used when Recent is called with a non-positive limit.
const DefaultRecentLimit = 50

// SQLiteHistoryStore implements domain.HistoryStore using SQLite.
type SQLiteHistoryStore struct {
	db *sql.DB
}

var _ domain.HistoryStore = (*SQLiteHistoryStore)(nil)

// NewSQLiteHistoryStore opens (or creates) a SQLite database at dbPath
// and runs the schema migration. The parent directory is created if missing.
func NewSQLiteHistoryStore(dbPath string) (*SQLiteHistoryStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &SQLiteHistoryStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prompt_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			prompt       TEXT NOT NULL,
			provider     TEXT NOT NULL DEFAULT '',
			object_count INTEGER NOT NULL DEFAULT 0,
			duration_ms  INTEGER NOT NULL DEFAULT 0,
			status       TEXT NOT NULL,
			error        TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL
		)
	`)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

// Append inserts e. A zero CreatedAt is stamped with the current time.
func (s *SQLiteHistoryStore) Append(ctx context.Context, e domain.HistoryEntry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prompt_history (prompt, provider, object_count, duration_ms, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Prompt, e.Provider, e.ObjectCount, e.DurationMs, e.Status, e.Error,
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("%w: insert: %v", domain.ErrHistoryStore, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteHistoryStore) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, prompt, provider, object_count, duration_ms, status, error, created_at
		 FROM prompt_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrHistoryStore, err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %v", domain.ErrHistoryStore, err)
	}
	return entries, nil
}

// Get returns the entry with the given id.
func (s *SQLiteHistoryStore) Get(ctx context.Context, id int64) (*domain.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, prompt, provider, object_count, duration_ms, status, error, created_at
		 FROM prompt_history WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewSubSystemError("history", "SQLiteHistoryStore.Get", domain.ErrNotFound,
			fmt.Sprintf("entry %d", id))
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*domain.HistoryEntry, error) {
	var (
		e       domain.HistoryEntry
		created string
	)
	if err := sc.Scan(&e.ID, &e.Prompt, &e.Provider, &e.ObjectCount, &e.DurationMs, &e.Status, &e.Error, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: scan: %v", domain.ErrHistoryStore, err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("%w: parse created_at: %v", domain.ErrHistoryStore, err)
	}
	e.CreatedAt = t
	return &e, nil
}
