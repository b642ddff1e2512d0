package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when an operation requires a current
	// user and none is set.
	ErrNotAuthenticated = errors.New("application: not logged in")
	// ErrUnauthorized is returned when the current user lacks permission for
	// the specific entity, e.g. responding to a session not addressed to them.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when an operation would violate a uniqueness
	// invariant or reopen a closed study session.
	ErrConflict = errors.New("application: conflict")
)

// errNoChange signals that a mutation function found nothing to do. The
// transaction helper treats it as success without writing, so no-op
// operations (removing an absent slot, unenrolling an absent course) never
// touch storage.
var errNoChange = errors.New("application: no change")

// ValidationError captures field level input issues that callers can surface
// to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
