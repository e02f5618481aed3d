// Package snapshot — локальное durable-хранилище снапшотов выбора
// на SQLite-файле рядом с киоском. Это не удалённый стор: сюда
// пишется единственный ключ сессии, чтобы выбор переживал рестарт.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// киоск — один писатель, пула не нужно
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS selection_snapshots (
			key        TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM selection_snapshots WHERE key = ?`, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO selection_snapshots (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, key, data, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM selection_snapshots WHERE key = ?`, key)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
