package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mediavault/internal/ingest"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing journal databases are then rejected with a clear error.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages batch history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// RecordBatch persists one completed batch run with its per-item outcomes.
// It satisfies ingest.BatchRecorder.
func (s *Store) RecordBatch(ctx context.Context, requests []ingest.Request, summary ingest.BatchSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO batches (created_at, total, success_count, fail_count) VALUES (?, ?, ?, ?)`,
		now, summary.Total, summary.SuccessCount, summary.FailCount,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("batch id: %w", err)
	}

	for i, result := range summary.Results {
		sourceURL := ""
		if i < len(requests) {
			sourceURL = requests[i].SourceURL
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO batch_items (
                batch_id, position, title, source_url, success,
                storage_url, record_id, size_bytes, error
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID, result.Index, result.Title, sourceURL, result.Success,
			result.StorageURL, result.RecordID, result.SizeBytes, result.Error,
		)
		if err != nil {
			return fmt.Errorf("insert batch item %d: %w", result.Index, err)
		}
	}
	return tx.Commit()
}

// Recent returns the most recent batches, newest first, with items ordered
// by submission position.
func (s *Store) Recent(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, total, success_count, fail_count
         FROM batches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var batch Batch
		var createdAt string
		if err := rows.Scan(&batch.ID, &createdAt, &batch.Total, &batch.SuccessCount, &batch.FailCount); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			batch.CreatedAt = parsed
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}

	for i := range batches {
		items, err := s.itemsForBatch(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Items = items
	}
	return batches, nil
}

func (s *Store) itemsForBatch(ctx context.Context, batchID int64) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_id, position, title, source_url, success,
                COALESCE(storage_url, ''), COALESCE(record_id, ''), size_bytes, COALESCE(error, '')
         FROM batch_items WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.BatchID, &item.Position, &item.Title, &item.SourceURL,
			&item.Success, &item.StorageURL, &item.RecordID, &item.SizeBytes, &item.Error); err != nil {
			return nil, fmt.Errorf("scan batch item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
