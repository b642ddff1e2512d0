// Package memory provides an in-process DocumentStore used by tests and by
// callers that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/example/studygroup/internal/document"
	"github.com/example/studygroup/internal/persistence"
)

// Store holds the document in memory. Loads and saves exchange deep copies so
// callers never alias the stored value.
type Store struct {
	mu     sync.RWMutex
	doc    document.Document
	seeded bool
	closed bool
}

var _ persistence.DocumentStore = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Seed replaces the stored document, bypassing Save semantics. Intended for
// test setup.
func (s *Store) Seed(doc document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	s.seeded = true
}

// Load returns a copy of the stored document, or the empty document when
// nothing has been saved yet.
func (s *Store) Load(ctx context.Context) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return document.Document{}, persistence.ErrClosed
	}
	if !s.seeded {
		return document.Empty(), nil
	}
	return s.doc.Clone(), nil
}

// Save replaces the stored document.
func (s *Store) Save(ctx context.Context, doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistence.ErrClosed
	}
	s.doc = doc.Clone()
	s.seeded = true
	return nil
}

// Reset discards the stored document.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return persistence.ErrClosed
	}
	s.doc = document.Document{}
	s.seeded = false
	return nil
}

// Close marks the store unusable. Subsequent calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
