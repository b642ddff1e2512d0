package application

import (
	"context"
	"strconv"
	"strings"

	"github.com/example/studygroup/internal/document"
)

// SuggestBuddies returns every other user who shares at least one course with
// the current user and has at least one availability slot overlapping one of
// the current user's slots on the same day. Results keep user-table order;
// there is no ranking beyond the boolean filter.
func (s *Store) SuggestBuddies(ctx context.Context) ([]document.User, error) {
	buddies := []document.User{}
	err := s.view(ctx, func(doc *document.Document) error {
		user, err := requireCurrentUser(doc)
		if err != nil {
			return err
		}

		mine := enrolledCourseIDs(doc, user.ID)
		for _, candidate := range doc.Users {
			if candidate.ID == user.ID {
				continue
			}
			if !sharesCourse(doc, mine, candidate.ID) {
				continue
			}
			if !anyOverlap(user.Availability, candidate.Availability) {
				continue
			}
			buddies = append(buddies, candidate.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buddies, nil
}

func sharesCourse(doc *document.Document, mine map[string]struct{}, userID string) bool {
	for _, enrollment := range doc.Enrollments {
		if enrollment.UserID != userID {
			continue
		}
		if _, ok := mine[enrollment.CourseID]; ok {
			return true
		}
	}
	return false
}

func anyOverlap(a, b []document.Availability) bool {
	for _, slotA := range a {
		for _, slotB := range b {
			if slotsOverlap(slotA, slotB) {
				return true
			}
		}
	}
	return false
}

// slotsOverlap reports whether two slots on the same day share open time.
// Ranges that merely touch (one ends exactly when the other starts) do not
// overlap.
func slotsOverlap(a, b document.Availability) bool {
	if a.Day != b.Day {
		return false
	}

	startA, endA := clockValue(a.Start), clockValue(a.End)
	startB, endB := clockValue(b.Start), clockValue(b.End)
	if startA < 0 || endA < 0 || startB < 0 || endB < 0 {
		return false
	}

	start := startA
	if startB > start {
		start = startB
	}
	end := endA
	if endB < end {
		end = endB
	}
	return start < end
}

// clockValue converts "HH:MM" to its colon-stripped numeric form, e.g.
// "09:30" -> 930. Malformed values yield -1.
func clockValue(value string) int {
	n, err := strconv.Atoi(strings.Replace(value, ":", "", 1))
	if err != nil {
		return -1
	}
	return n
}
