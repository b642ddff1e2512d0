package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/example/studygroup/internal/document"
)

// handlePattern constrains handles to 3-20 characters of letters, digits,
// underscore, dot, or dash.
var handlePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{3,20}$`)

// CreateUser registers a new user and signs them in. The handle must match
// the handle pattern and be unique case-insensitively across all users.
func (s *Store) CreateUser(ctx context.Context, name, handle string) (user document.User, err error) {
	name = strings.TrimSpace(name)
	handle = strings.TrimSpace(handle)

	logger := storeLogger(ctx, s.logger, "CreateUser", "handle", handle)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created and signed in")
	}()

	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "name is required")
	}
	if !handlePattern.MatchString(handle) {
		vErr.add("handle", "handle must be 3-20 characters of letters, digits, '_', '.', or '-'")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.update(ctx, func(doc *document.Document) error {
		if _, ok := doc.UserByHandle(handle); ok {
			return fmt.Errorf("handle %q already taken: %w", handle, ErrConflict)
		}

		user = document.User{
			ID:           s.idGenerator(),
			Name:         name,
			Handle:       handle,
			CreatedAt:    s.now().UTC(),
			Availability: []document.Availability{},
		}
		doc.Users = append(doc.Users, user)
		doc.CurrentUserID = user.ID
		return nil
	})
	if err != nil {
		user = document.User{}
	}
	return
}

// Login sets the current user to the one matching handle case-insensitively.
func (s *Store) Login(ctx context.Context, handle string) (user document.User, err error) {
	handle = strings.TrimSpace(handle)

	logger := storeLogger(ctx, s.logger, "Login", "handle", handle)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "login succeeded")
	}()

	err = s.update(ctx, func(doc *document.Document) error {
		match, ok := doc.UserByHandle(handle)
		if !ok {
			return fmt.Errorf("no user with handle %q: %w", handle, ErrNotFound)
		}
		user = match
		doc.CurrentUserID = match.ID
		return nil
	})
	if err != nil {
		user = document.User{}
	}
	return
}

// Logout clears the current user. Calling it while signed out is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	return s.update(ctx, func(doc *document.Document) error {
		if doc.CurrentUserID == "" {
			return errNoChange
		}
		doc.CurrentUserID = ""
		return nil
	})
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser(ctx context.Context) (document.User, bool, error) {
	var (
		user  document.User
		found bool
	)
	err := s.view(ctx, func(doc *document.Document) error {
		if doc.CurrentUserID == "" {
			return nil
		}
		user, found = doc.UserByID(doc.CurrentUserID)
		return nil
	})
	if err != nil {
		return document.User{}, false, err
	}
	return user, found, nil
}

// FindByHandle looks a user up by handle, case-insensitively.
func (s *Store) FindByHandle(ctx context.Context, handle string) (document.User, bool, error) {
	handle = strings.TrimSpace(handle)

	var (
		user  document.User
		found bool
	)
	err := s.view(ctx, func(doc *document.Document) error {
		user, found = doc.UserByHandle(handle)
		return nil
	})
	if err != nil {
		return document.User{}, false, err
	}
	return user, found, nil
}
