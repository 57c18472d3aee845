package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// SQLiteRegistry implements Registry using SQLite.
type SQLiteRegistry struct {
	db *sql.DB
}

// NewSQLiteRegistry opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteRegistry(dbPath string) (*SQLiteRegistry, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRegistry{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		chunks INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sources_created_at ON sources(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Record inserts or replaces a source entry.
func (s *SQLiteRegistry) Record(ctx context.Context, src *models.Source) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sources (id, kind, chunks, created_at)
		 VALUES (?, ?, ?, ?)`,
		src.ID, src.Kind, src.Chunks, src.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	return nil
}

// List returns all sources, newest first.
func (s *SQLiteRegistry) List(ctx context.Context) ([]*models.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, chunks, created_at FROM sources ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.Source
	for rows.Next() {
		var src models.Source
		if err := rows.Scan(&src.ID, &src.Kind, &src.Chunks, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, &src)
	}
	return sources, rows.Err()
}

// Get returns a source by ID, or nil when absent.
func (s *SQLiteRegistry) Get(ctx context.Context, id string) (*models.Source, error) {
	var src models.Source
	err := s.db.QueryRowContext(ctx,
		`SELECT id, kind, chunks, created_at FROM sources WHERE id = ?`, id,
	).Scan(&src.ID, &src.Kind, &src.Chunks, &src.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return &src, nil
}

// Delete removes a source entry.
func (s *SQLiteRegistry) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteRegistry) Close() error {
	return s.db.Close()
}
