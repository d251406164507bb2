// Package mysql keeps task collections in a MySQL table.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

type KVStorage struct {
	db *sql.DB
}

func NewKVStorage(db *sql.DB) *KVStorage {
	return &KVStorage{db: db}
}

// Open connects using a go-sql-driver DSN (user:pass@tcp(host:3306)/db)
// and creates the table if needed.
func Open(ctx context.Context, dsn string) (*KVStorage, error) {
	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}

	s := NewKVStorage(db)
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func parseDSN(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("could not parse dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return cfg, nil
}

func (s *KVStorage) migrate(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS todo_kv (
	name VARCHAR(255) PRIMARY KEY,
	value MEDIUMTEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("could not create table: %w", err)
	}
	return nil
}

func (s *KVStorage) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM todo_kv WHERE name = ?`
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
	const query = `INSERT INTO todo_kv (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("could not set %q: %w", key, err)
	}
	return nil
}

func (s *KVStorage) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM todo_kv WHERE name = ?`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("could not remove %q: %w", key, err)
	}
	return nil
}

func (s *KVStorage) Close() error {
	return s.db.Close()
}
