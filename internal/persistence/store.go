// Package persistence defines the storage contract for the serialized
// study-group document.
package persistence

import (
	"context"
	"errors"

	"github.com/example/studygroup/internal/document"
)

// ErrClosed is returned when an operation reaches a store whose lifecycle has
// already ended.
var ErrClosed = errors.New("persistence: store closed")

// DocumentStore persists the whole document as one blob. Load never fails on
// missing or unreadable state; it falls back to the empty document so callers
// always start from something well formed. Save writes the full document
// atomically; implementations must never perform partial-field writes.
type DocumentStore interface {
	Load(ctx context.Context) (document.Document, error)
	Save(ctx context.Context, doc document.Document) error
	Reset(ctx context.Context) error
	Close() error
}
