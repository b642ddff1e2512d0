// Package document defines the single persisted aggregate backing the
// study-group store. Every "table" of the system (users, courses,
// enrollments, study sessions, and the local session pointer) is a field of
// one Document value; cross-table consistency is only meaningful against one
// loaded instance at a time.
package document

import (
	"strings"
	"time"
)

// Version is the current document schema version. It is stamped on every
// repaired document so future revisions can key defaulting steps off it.
const Version = 1

// Study session lifecycle states. A session is created pending and moves to
// exactly one of the terminal states.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
)

// Document is the sole persisted aggregate. It serializes to a single JSON
// blob; field names match the storage layout consumed by the UI layer.
type Document struct {
	Version       int            `json:"version"`
	Users         []User         `json:"users"`
	Courses       []Course       `json:"courses"`
	Enrollments   []Enrollment   `json:"enrollments"`
	StudySessions []StudySession `json:"studySessions"`
	CurrentUserID string         `json:"currentUserId,omitempty"`
}

// User represents a registered student account.
type User struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Handle       string         `json:"handle"`
	CreatedAt    time.Time      `json:"createdAt"`
	Availability []Availability `json:"availability"`
}

// Availability is one weekly time slot a user has marked as free. Start and
// End use the lexically comparable "HH:MM" form.
type Availability struct {
	Day   string `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Course is a catalog entry keyed by its normalized code.
type Course struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title,omitempty"`
}

// Enrollment joins one user to one course. At most one row exists per
// (UserID, CourseID) pair.
type Enrollment struct {
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}

// StudySession is a proposed meeting between two users around a course. At is
// the resolved absolute instant; callers compute concrete occurrences before
// the session reaches the store.
type StudySession struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	RequesterID string    `json:"requesterId"`
	RequesteeID string    `json:"requesteeId"`
	At          time.Time `json:"at"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// KnownStatus reports whether status is one of the lifecycle states.
func KnownStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusDeclined:
		return true
	}
	return false
}

// Empty returns a fresh document with all sequences present and no current
// user. Load paths fall back to this value when storage is absent or corrupt.
func Empty() Document {
	return Document{
		Version:       Version,
		Users:         []User{},
		Courses:       []Course{},
		Enrollments:   []Enrollment{},
		StudySessions: []StudySession{},
	}
}

// Clone returns a deep copy. Store implementations hand out clones so callers
// never alias state still owned by the store.
func (d Document) Clone() Document {
	out := d
	out.Users = make([]User, len(d.Users))
	for i, user := range d.Users {
		out.Users[i] = user.Clone()
	}
	out.Courses = make([]Course, len(d.Courses))
	copy(out.Courses, d.Courses)
	out.Enrollments = make([]Enrollment, len(d.Enrollments))
	copy(out.Enrollments, d.Enrollments)
	out.StudySessions = make([]StudySession, len(d.StudySessions))
	copy(out.StudySessions, d.StudySessions)
	return out
}

// Clone returns a deep copy of the user, including availability slots.
func (u User) Clone() User {
	out := u
	if u.Availability != nil {
		out.Availability = make([]Availability, len(u.Availability))
		copy(out.Availability, u.Availability)
	}
	return out
}

// UserByID returns the user with the given identifier.
func (d Document) UserByID(id string) (User, bool) {
	for _, user := range d.Users {
		if user.ID == id {
			return user, true
		}
	}
	return User{}, false
}

// UserByHandle returns the user whose handle matches case-insensitively.
func (d Document) UserByHandle(handle string) (User, bool) {
	for _, user := range d.Users {
		if strings.EqualFold(user.Handle, handle) {
			return user, true
		}
	}
	return User{}, false
}

// CourseByID returns the course with the given identifier.
func (d Document) CourseByID(id string) (Course, bool) {
	for _, course := range d.Courses {
		if course.ID == id {
			return course, true
		}
	}
	return Course{}, false
}

// CourseByCode returns the course with the given normalized code.
func (d Document) CourseByCode(code string) (Course, bool) {
	for _, course := range d.Courses {
		if course.Code == code {
			return course, true
		}
	}
	return Course{}, false
}

// SessionByID returns the study session with the given identifier.
func (d Document) SessionByID(id string) (StudySession, bool) {
	for _, session := range d.StudySessions {
		if session.ID == id {
			return session, true
		}
	}
	return StudySession{}, false
}
