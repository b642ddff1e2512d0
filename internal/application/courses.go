package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/example/studygroup/internal/document"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeCourseCode converts a raw course code to its canonical form: trim,
// collapse internal whitespace runs to a single space, upper-case. The result
// is the natural key for courses, e.g. "cpsc  2150-001" -> "CPSC 2150-001".
func NormalizeCourseCode(code string) string {
	code = strings.TrimSpace(code)
	code = whitespaceRun.ReplaceAllString(code, " ")
	return strings.ToUpper(code)
}

// getOrCreateCourse resolves the course with the given normalized code,
// creating it when absent. Re-encountering a known course with a title fills
// in a missing title but never overwrites one.
func (s *Store) getOrCreateCourse(doc *document.Document, code, title string) document.Course {
	for i, course := range doc.Courses {
		if course.Code == code {
			if course.Title == "" && title != "" {
				doc.Courses[i].Title = title
			}
			return doc.Courses[i]
		}
	}

	course := document.Course{ID: s.idGenerator(), Code: code, Title: title}
	doc.Courses = append(doc.Courses, course)
	return course
}

// Enroll adds the current user to the course with the given code, creating
// the course on first use. Course creation and enrollment happen in one
// load/save cycle.
func (s *Store) Enroll(ctx context.Context, code string) (document.Course, error) {
	return s.EnrollWithTitle(ctx, code, "")
}

// EnrollWithTitle is Enroll with an optional course title recorded alongside
// a newly created course.
func (s *Store) EnrollWithTitle(ctx context.Context, code, title string) (course document.Course, err error) {
	normalized := NormalizeCourseCode(code)

	logger := storeLogger(ctx, s.logger, "Enroll", "course_code", normalized)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "enrollment failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("course_id", course.ID).InfoContext(ctx, "enrollment added")
	}()

	err = s.update(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		if normalized == "" {
			vErr := &ValidationError{}
			vErr.add("course_code", "course code is required")
			return vErr
		}

		course = s.getOrCreateCourse(doc, normalized, strings.TrimSpace(title))
		for _, enrollment := range doc.Enrollments {
			if enrollment.UserID == user.ID && enrollment.CourseID == course.ID {
				return fmt.Errorf("course already added: %w", ErrConflict)
			}
		}

		doc.Enrollments = append(doc.Enrollments, document.Enrollment{
			UserID:    user.ID,
			CourseID:  course.ID,
			CreatedAt: s.now().UTC(),
		})
		return nil
	})
	if err != nil {
		course = document.Course{}
	}
	return
}

// Unenroll removes the current user's enrollment for the course with the
// given code. Unknown codes and absent enrollments are no-ops, not errors.
func (s *Store) Unenroll(ctx context.Context, code string) error {
	normalized := NormalizeCourseCode(code)

	return s.update(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		course, ok := doc.CourseByCode(normalized)
		if !ok {
			return errNoChange
		}

		kept := make([]document.Enrollment, 0, len(doc.Enrollments))
		for _, enrollment := range doc.Enrollments {
			if enrollment.UserID == user.ID && enrollment.CourseID == course.ID {
				continue
			}
			kept = append(kept, enrollment)
		}
		if len(kept) == len(doc.Enrollments) {
			return errNoChange
		}
		doc.Enrollments = kept
		return nil
	})
}

// MyCourses returns the current user's courses in course-table order.
func (s *Store) MyCourses(ctx context.Context) ([]document.Course, error) {
	var courses []document.Course
	err := s.view(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}
		courses = coursesFor(doc, user.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// CoursesFor returns the given user's courses in course-table order. Unknown
// users simply have no courses.
func (s *Store) CoursesFor(ctx context.Context, userID string) ([]document.Course, error) {
	var courses []document.Course
	err := s.view(ctx, func(doc *document.Document) error {
		courses = coursesFor(doc, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// Classmates returns the users enrolled in the named course, excluding the
// current user. An unknown course yields an empty result.
func (s *Store) Classmates(ctx context.Context, code string) ([]document.User, error) {
	normalized := NormalizeCourseCode(code)

	classmates := []document.User{}
	err := s.view(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		course, ok := doc.CourseByCode(normalized)
		if !ok {
			return nil
		}

		enrolled := make(map[string]struct{})
		for _, enrollment := range doc.Enrollments {
			if enrollment.CourseID == course.ID {
				enrolled[enrollment.UserID] = struct{}{}
			}
		}

		for _, candidate := range doc.Users {
			if candidate.ID == user.ID {
				continue
			}
			if _, ok := enrolled[candidate.ID]; ok {
				classmates = append(classmates, candidate.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return classmates, nil
}

// MutualCourses returns the courses shared by the current user and the other
// user, in course-table order.
func (s *Store) MutualCourses(ctx context.Context, otherUserID string) ([]document.Course, error) {
	var mutual []document.Course
	err := s.view(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}
		if _, ok := doc.UserByID(otherUserID); !ok {
			return fmt.Errorf("no user %q: %w", otherUserID, ErrNotFound)
		}

		mine := enrolledCourseIDs(doc, user.ID)
		theirs := enrolledCourseIDs(doc, otherUserID)

		mutual = []document.Course{}
		for _, course := range doc.Courses {
			if _, ok := mine[course.ID]; !ok {
				continue
			}
			if _, ok := theirs[course.ID]; !ok {
				continue
			}
			mutual = append(mutual, course)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mutual, nil
}

func coursesFor(doc *document.Document, userID string) []document.Course {
	enrolled := enrolledCourseIDs(doc, userID)
	courses := []document.Course{}
	for _, course := range doc.Courses {
		if _, ok := enrolled[course.ID]; ok {
			courses = append(courses, course)
		}
	}
	return courses
}

func enrolledCourseIDs(doc *document.Document, userID string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, enrollment := range doc.Enrollments {
		if enrollment.UserID == userID {
			ids[enrollment.CourseID] = struct{}{}
		}
	}
	return ids
}
