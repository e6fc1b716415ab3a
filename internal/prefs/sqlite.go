package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const DriverName = "sqlite3"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS preferences (
		key VARCHAR NOT NULL PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// SQLite keeps preferences in a single table of a sqlite database file.
type SQLite struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("prefs: %w", err)
		}
	}
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("prefs: opening %s: %w", path, err)
	}
	s, err := NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewSQLite(db *sql.DB) (*SQLite, error) {
	s := &SQLite{db: sqlx.NewDb(db, DriverName)}
	if err := s.RunMigrations(); err != nil {
		return nil, fmt.Errorf("prefs: running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLite) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM preferences WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP;
	`, key, value)
	return err
}

type entry struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// All returns every stored preference.
func (s *SQLite) All(ctx context.Context) (map[string]string, error) {
	var rows []entry
	if err := s.db.SelectContext(ctx, &rows, `SELECT key, value FROM preferences ORDER BY key`); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
