// Package testfixtures provides deterministic clocks, identifier generators,
// and document builders shared across package tests.
package testfixtures

import (
	"github.com/example/studygroup/internal/document"
)

// User builds a user with the given identity and no availability.
func User(id, name, handle string) document.User {
	return document.User{
		ID:           id,
		Name:         name,
		Handle:       handle,
		CreatedAt:    ReferenceTime(),
		Availability: []document.Availability{},
	}
}

// Slot builds an availability slot.
func Slot(day, start, end string) document.Availability {
	return document.Availability{Day: day, Start: start, End: end}
}

// Course builds a course with the given normalized code.
func Course(id, code string) document.Course {
	return document.Course{ID: id, Code: code}
}

// Enrollment builds an enrollment row stamped with the reference time.
func Enrollment(userID, courseID string) document.Enrollment {
	return document.Enrollment{UserID: userID, CourseID: courseID, CreatedAt: ReferenceTime()}
}

// Session builds a pending study session proposed three days after the
// reference time.
func Session(id, courseID, requesterID, requesteeID string) document.StudySession {
	return document.StudySession{
		ID:          id,
		CourseID:    courseID,
		RequesterID: requesterID,
		RequesteeID: requesteeID,
		At:          ReferenceTime().AddDate(0, 0, 3),
		Status:      document.StatusPending,
		CreatedAt:   ReferenceTime(),
	}
}

// SeededDocument returns a small consistent document: two users enrolled in a
// shared course, one pending session between them, user-1 signed in.
func SeededDocument() document.Document {
	doc := document.Empty()
	doc.Users = []document.User{
		User("user-1", "Eli Monroe", "eli_monroe"),
		User("user-2", "Ada Quinn", "ada.quinn"),
	}
	doc.Users[0].Availability = []document.Availability{Slot("Monday", "09:00", "10:30")}
	doc.Courses = []document.Course{Course("course-1", "CPSC 2150-001")}
	doc.Enrollments = []document.Enrollment{
		Enrollment("user-1", "course-1"),
		Enrollment("user-2", "course-1"),
	}
	doc.StudySessions = []document.StudySession{
		Session("session-1", "course-1", "user-1", "user-2"),
	}
	doc.CurrentUserID = "user-1"
	return doc
}
