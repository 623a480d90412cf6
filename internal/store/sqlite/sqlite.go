// Package sqlite stores documents as JSON rows in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// maxParams keeps IN lists below SQLite's bound-parameter limit.
const maxParams = 500

// Backend is a SQLite document backend.
type Backend struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("SQLite document store opened", "path", path)
	}
	return &Backend{db: db, logger: logger}, nil
}

// Scan calls fn for every document in collection, ordered by id.
func (b *Backend) Scan(ctx context.Context, collection string, fn func([]byte) error) error {
	rows, err := b.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return fmt.Errorf("scan %s: %w", collection, err)
	}
	return eachBody(rows, fn)
}

// Get calls fn for each id that exists. Missing ids are skipped.
func (b *Backend) Get(ctx context.Context, collection string, ids []string, fn func([]byte) error) error {
	for start := 0; start < len(ids); start += maxParams {
		chunk := ids[start:min(start+maxParams, len(ids))]

		args := make([]any, 0, len(chunk)+1)
		args = append(args, collection)
		for _, id := range chunk {
			args = append(args, id)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")

		rows, err := b.db.QueryContext(ctx,
			`SELECT body FROM documents WHERE collection = ? AND id IN (`+placeholders+`) ORDER BY id`, args...)
		if err != nil {
			return fmt.Errorf("get %s: %w", collection, err)
		}
		if err := eachBody(rows, fn); err != nil {
			return err
		}
	}
	return nil
}

// Put inserts or replaces a document.
func (b *Backend) Put(ctx context.Context, collection, id string, doc []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		collection, id, doc, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (b *Backend) Delete(ctx context.Context, collection, id string) error {
	if _, err := b.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

func eachBody(rows *sql.Rows, fn func([]byte) error) error {
	defer rows.Close()
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		if err := fn(body); err != nil {
			return err
		}
	}
	return rows.Err()
}
