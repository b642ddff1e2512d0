package application

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studygroup/internal/document"
)

// UnknownCourseLabel is the sentinel course code shown on session views whose
// course has since been removed.
const UnknownCourseLabel = "unknown course"

const (
	shortTimeLayout = "Mon Jan 2 15:04"
	longTimeLayout  = "Monday, January 2, 2006 at 3:04 PM"
)

// ParticipantSummary is the identity slice of a session participant exposed
// on enriched views.
type ParticipantSummary struct {
	ID     string
	Name   string
	Handle string
}

// SessionView is a study session joined with its course code, a formatted
// meeting time, and both participant identities.
type SessionView struct {
	Session    document.StudySession
	CourseCode string
	TimeLabel  string
	Requester  ParticipantSummary
	Requestee  ParticipantSummary
}

// RequestSession creates a pending study-session request from the current
// user to requesteeID around the given course, at the provided instant.
// Callers resolve "next Tuesday at 17:00" to an absolute time before calling.
func (s *Store) RequestSession(ctx context.Context, requesteeID, courseID string, at time.Time) (session document.StudySession, err error) {
	logger := storeLogger(ctx, s.logger, "RequestSession",
		"requestee_id", requesteeID,
		"course_id", courseID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session request failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "session requested")
	}()

	err = s.update(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		if requesteeID == user.ID {
			vErr := &ValidationError{}
			vErr.add("requestee", "cannot request a session with yourself")
			return vErr
		}
		if _, ok := doc.UserByID(requesteeID); !ok {
			return fmt.Errorf("no user %q: %w", requesteeID, ErrNotFound)
		}

		session = document.StudySession{
			ID:          s.idGenerator(),
			CourseID:    courseID,
			RequesterID: user.ID,
			RequesteeID: requesteeID,
			At:          at.UTC(),
			Status:      document.StatusPending,
			CreatedAt:   s.now().UTC(),
		}
		doc.StudySessions = append(doc.StudySessions, session)
		return nil
	})
	if err != nil {
		session = document.StudySession{}
	}
	return
}

// PendingRequests returns the sessions awaiting the current user's response,
// enriched for display, in session-table order.
func (s *Store) PendingRequests(ctx context.Context) ([]SessionView, error) {
	views := []SessionView{}
	err := s.view(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		for _, session := range doc.StudySessions {
			if session.RequesteeID != user.ID || session.Status != document.StatusPending {
				continue
			}
			views = append(views, enrichSession(doc, session, shortTimeLayout))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// UpdateSessionStatus records the requestee's response to a pending session.
// Only the requestee may respond, and only while the session is pending.
func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID, status string) (session document.StudySession, err error) {
	logger := storeLogger(ctx, s.logger, "UpdateSessionStatus",
		"session_id", sessionID,
		"status", status,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "status update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session status updated")
	}()

	err = s.update(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		if status != document.StatusConfirmed && status != document.StatusDeclined {
			vErr := &ValidationError{}
			vErr.add("status", "status must be \"confirmed\" or \"declined\"")
			return vErr
		}

		for i := range doc.StudySessions {
			if doc.StudySessions[i].ID != sessionID {
				continue
			}
			if doc.StudySessions[i].RequesteeID != user.ID {
				return fmt.Errorf("only the requestee may respond: %w", ErrUnauthorized)
			}
			if doc.StudySessions[i].Status != document.StatusPending {
				return fmt.Errorf("session already %s: %w", doc.StudySessions[i].Status, ErrConflict)
			}
			doc.StudySessions[i].Status = status
			session = doc.StudySessions[i]
			return nil
		}
		return fmt.Errorf("no session %q: %w", sessionID, ErrNotFound)
	})
	if err != nil {
		session = document.StudySession{}
	}
	return
}

// ConfirmedSessions returns the confirmed sessions the current user takes
// part in, on either side, enriched with a long-form time label.
func (s *Store) ConfirmedSessions(ctx context.Context) ([]SessionView, error) {
	views := []SessionView{}
	err := s.view(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		for _, session := range doc.StudySessions {
			if session.Status != document.StatusConfirmed {
				continue
			}
			if session.RequesterID != user.ID && session.RequesteeID != user.ID {
				continue
			}
			views = append(views, enrichSession(doc, session, longTimeLayout))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func enrichSession(doc *document.Document, session document.StudySession, layout string) SessionView {
	courseCode := UnknownCourseLabel
	if course, ok := doc.CourseByID(session.CourseID); ok {
		courseCode = course.Code
	}

	return SessionView{
		Session:    session,
		CourseCode: courseCode,
		TimeLabel:  session.At.Format(layout),
		Requester:  summarize(doc, session.RequesterID),
		Requestee:  summarize(doc, session.RequesteeID),
	}
}

func summarize(doc *document.Document, userID string) ParticipantSummary {
	summary := ParticipantSummary{ID: userID}
	if user, ok := doc.UserByID(userID); ok {
		summary.Name = user.Name
		summary.Handle = user.Handle
	}
	return summary
}
