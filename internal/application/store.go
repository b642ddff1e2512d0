// Package application implements the study-group document store: user
// identity and the local login session, course enrollment, availability
// tracking, the study-session request workflow, and buddy suggestions. All
// state lives in one persisted document; every operation is a synchronous
// read-modify-write against it.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/studygroup/internal/document"
	"github.com/example/studygroup/internal/document/migration"
	"github.com/example/studygroup/internal/persistence"
)

// Store exposes the operation surface consumed by the UI layer. Construct
// instances with NewStore; the zero value is not usable.
type Store struct {
	persist     persistence.DocumentStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewStore wires a Store over the given document storage. A nil idGenerator
// defaults to UUIDs and a nil now defaults to the wall clock.
func NewStore(persist persistence.DocumentStore, idGenerator func() string, now func() time.Time) *Store {
	return NewStoreWithLogger(persist, idGenerator, now, nil)
}

// NewStoreWithLogger constructs a Store with a specified logger.
func NewStoreWithLogger(persist persistence.DocumentStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Store {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		persist:     persist,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	if s == nil || s.persist == nil {
		return nil
	}
	return s.persist.Close()
}

// Reset replaces the persisted document with the empty document.
func (s *Store) Reset(ctx context.Context) error {
	if s == nil || s.persist == nil {
		return fmt.Errorf("store not configured")
	}
	if err := s.persist.Reset(ctx); err != nil {
		return err
	}
	storeLogger(ctx, s.logger, "Reset").InfoContext(ctx, "document reset")
	return nil
}

// Dump returns a repaired snapshot of the current document for diagnostics.
// The snapshot is detached; mutating it has no effect on stored state.
func (s *Store) Dump(ctx context.Context) (document.Document, error) {
	if s == nil || s.persist == nil {
		return document.Document{}, fmt.Errorf("store not configured")
	}
	doc, _, err := s.load(ctx)
	if err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

// Repair loads the document, applies the repair steps, and persists the
// result when anything changed. Returns the names of the applied steps.
func (s *Store) Repair(ctx context.Context) ([]string, error) {
	if s == nil || s.persist == nil {
		return nil, fmt.Errorf("store not configured")
	}
	doc, applied, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, nil
	}
	if err := s.persist.Save(ctx, doc); err != nil {
		return nil, err
	}
	return applied, nil
}

// load reads the persisted document and runs the repair steps against the
// in-memory copy. Repairs are not written back here; they reach storage with
// the next successful mutation.
func (s *Store) load(ctx context.Context) (document.Document, []string, error) {
	doc, err := s.persist.Load(ctx)
	if err != nil {
		return document.Document{}, nil, err
	}
	result := migration.Apply(&doc)
	if result.Changed() {
		storeLogger(ctx, s.logger, "").InfoContext(ctx, "document repaired on load", "steps", result.Applied)
	}
	return doc, result.Applied, nil
}

// update is the transaction helper every mutating operation runs through: one
// load, the mutation applied to that instance, one save. Multi-step mutations
// stay inside a single fn so two independent load/save round trips can never
// race each other into a lost write. When fn fails, the persisted document is
// left exactly as it was.
func (s *Store) update(ctx context.Context, fn func(doc *document.Document) error) error {
	if s == nil || s.persist == nil {
		return fmt.Errorf("store not configured")
	}

	doc, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	return s.persist.Save(ctx, doc)
}

// view runs a read-only function against a freshly loaded (and repaired)
// document. Nothing is written back.
func (s *Store) view(ctx context.Context, fn func(doc *document.Document) error) error {
	if s == nil || s.persist == nil {
		return fmt.Errorf("store not configured")
	}

	doc, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(&doc)
}

// requireCurrentUser resolves the authenticated user or fails with
// ErrNotAuthenticated. Operations call this before any other validation.
func requireCurrentUser(doc *document.Document) (document.User, error) {
	if doc.CurrentUserID == "" {
		return document.User{}, ErrNotAuthenticated
	}
	user, ok := doc.UserByID(doc.CurrentUserID)
	if !ok {
		return document.User{}, ErrNotAuthenticated
	}
	return user, nil
}
