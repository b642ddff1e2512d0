// Package sqlite persists the study-group document as a single named row in a
// SQLite table, standing in for the browser key-value storage the UI layer
// originally wrote to.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/studygroup/internal/document"
	"github.com/example/studygroup/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// DefaultDocumentName is the row key used when callers do not pick one.
const DefaultDocumentName = "studygroup"

// BlobStore implements persistence.DocumentStore on top of SQLite. The whole
// document is serialized to JSON and written in one UPSERT statement, so a
// save is atomic by construction.
type BlobStore struct {
	db     *sql.DB
	name   string
	logger *slog.Logger
}

var _ persistence.DocumentStore = (*BlobStore)(nil)

// Open connects to the database at dsn and ensures the documents table
// exists. name selects the row holding the document.
func Open(dsn, name string) (*BlobStore, error) {
	return OpenWithLogger(dsn, name, nil)
}

// OpenWithLogger is Open with a caller-supplied logger.
func OpenWithLogger(dsn, name string, logger *slog.Logger) (*BlobStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: dsn is required")
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultDocumentName
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: initialize schema: %w", err)
	}

	return &BlobStore{db: db, name: name, logger: logger}, nil
}

// Load reads and deserializes the document row. A missing row or an
// unparsable payload yields the empty document; the corrupt case is a
// designed fallback and is logged at warn level rather than surfaced.
func (s *BlobStore) Load(ctx context.Context) (document.Document, error) {
	if s == nil || s.db == nil {
		return document.Document{}, persistence.ErrClosed
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE name = ?`, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Empty(), nil
	}
	if err != nil {
		return document.Document{}, fmt.Errorf("sqlite: load document %q: %w", s.name, err)
	}

	var doc document.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		s.logger.WarnContext(ctx, "stored document is unreadable, starting from empty",
			"document", s.name,
			"error", err,
		)
		return document.Empty(), nil
	}

	return doc, nil
}

// Save serializes the document and writes it as one statement.
func (s *BlobStore) Save(ctx context.Context, doc document.Document) error {
	if s == nil || s.db == nil {
		return persistence.ErrClosed
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sqlite: encode document %q: %w", s.name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		s.name,
		payload,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save document %q: %w", s.name, err)
	}
	return nil
}

// Reset deletes the document row, so the next Load yields the empty document.
func (s *BlobStore) Reset(ctx context.Context) error {
	if s == nil || s.db == nil {
		return persistence.ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, s.name); err != nil {
		return fmt.Errorf("sqlite: reset document %q: %w", s.name, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *BlobStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	db := s.db
	s.db = nil
	return db.Close()
}
