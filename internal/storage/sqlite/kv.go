package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlitedb "github.com/agalitsyn/sqlite"

	"github.com/agalitsyn/todo-list/internal/storage/sqlite/migrations"
)

type KVStorage struct {
	db *sql.DB
}

func NewKVStorage(db *sql.DB) *KVStorage {
	return &KVStorage{db: db}
}

// Open connects to the database file at path and applies pending migrations.
func Open(path string) (*KVStorage, error) {
	db, err := sqlitedb.Connect(path)
	if err != nil {
		return nil, err
	}
	if err := sqlitedb.MigrateUp(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not migrate database: %w", err)
	}
	return NewKVStorage(db), nil
}

func (s *KVStorage) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM kv WHERE key = ?`
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("could not get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStorage) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("could not set %q: %w", key, err)
	}
	return nil
}

func (s *KVStorage) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM kv WHERE key = ?`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("could not remove %q: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix in key order.
func (s *KVStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	const query = `SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key ASC`
	rows, err := s.db.QueryContext(ctx, query, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("could not list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("could not scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate keys: %w", err)
	}
	return keys, nil
}

func (s *KVStorage) Close() error {
	return s.db.Close()
}
