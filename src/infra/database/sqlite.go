package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/contre95/dupetrack/src/music"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore keeps the library snapshot in a single-table SQLite file.
type SqliteStore struct{}

// NewSqliteStore creates a new SqliteStore.
func NewSqliteStore() *SqliteStore {
	return &SqliteStore{}
}

func (s *SqliteStore) Format() music.StoreFormat { return music.FormatSQLite }

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			duration REAL NOT NULL DEFAULT 0,
			marker TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}

// Load reads every record from the database at path.
func (s *SqliteStore) Load(ctx context.Context, path string) (map[string]music.Record, error) {
	// sql.Open would silently create a missing file.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT key, path, duration, marker FROM records`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]music.Record)
	for rows.Next() {
		var key string
		var rec music.Record
		if err := rows.Scan(&key, &rec.Path, &rec.Duration, &rec.Marker); err != nil {
			return nil, err
		}
		records[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slog.Debug("SqliteStore.Load: records read", "path", path, "count", len(records))
	return records, nil
}

// Save replaces the table contents with records in one transaction.
func (s *SqliteStore) Save(ctx context.Context, path string, records map[string]music.Record) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createTables(ctx, db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (key, path, duration, marker) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, key := range sortedKeys(records) {
		rec := records[key]
		if _, err := stmt.ExecContext(ctx, key, rec.Path, rec.Duration, rec.Marker); err != nil {
			return fmt.Errorf("failed to insert record %q: %w", key, err)
		}
	}
	return tx.Commit()
}
