package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ridebooking/internal/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// SQLiteStore keeps documents as JSON bodies in a single table.
// Used for local runs and tests where no managed database is reachable.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

func NewSQLiteStore(path string, logger *zerolog.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		// Создаем директорию для БД, если её нет
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; also keeps a :memory: database on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "sqlite-store").Logger()
	}
	l.Info().Str("path", path).Msg("sqlite store initialized")

	return &SQLiteStore{db: db, logger: l, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS documents (
            collection TEXT NOT NULL,
            id TEXT NOT NULL,
            body TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            PRIMARY KEY (collection, id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(collection, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Add inserts a new document under a random id.
func (s *SQLiteStore) Add(ctx context.Context, collection string, fields models.Fields) (string, error) {
	id := uuid.NewString()
	now := s.now().UTC()

	body, err := json.Marshal(fields.Resolve(now))
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	query := `INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, string(body), now, now); err != nil {
		return "", fmt.Errorf("insert document into %s: %w", collection, err)
	}

	return id, nil
}

// Set upserts the document with the given id.
func (s *SQLiteStore) Set(ctx context.Context, collection, id string, fields models.Fields) error {
	now := s.now().UTC()

	body, err := json.Marshal(fields.Resolve(now))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query := `
        INSERT INTO documents (collection, id, body, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(collection, id) DO UPDATE SET
            body = excluded.body,
            updated_at = excluded.updated_at
    `
	if _, err := s.db.ExecContext(ctx, query, collection, id, string(body), now, now); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
