package document

import (
	"testing"
	"time"
)

func TestEmpty(t *testing.T) {
	t.Parallel()

	doc := Empty()

	if doc.Version != Version {
		t.Fatalf("expected version %d, got %d", Version, doc.Version)
	}
	if doc.Users == nil || doc.Courses == nil || doc.Enrollments == nil || doc.StudySessions == nil {
		t.Fatalf("expected all sequences to be present, got %#v", doc)
	}
	if len(doc.Users)+len(doc.Courses)+len(doc.Enrollments)+len(doc.StudySessions) != 0 {
		t.Fatalf("expected all sequences to be empty, got %#v", doc)
	}
	if doc.CurrentUserID != "" {
		t.Fatalf("expected no current user, got %q", doc.CurrentUserID)
	}
}

func TestDocumentClone(t *testing.T) {
	t.Parallel()

	original := Empty()
	original.Users = []User{{
		ID:           "user-1",
		Name:         "Eli",
		Handle:       "eli_monroe",
		CreatedAt:    time.Date(2024, time.September, 2, 9, 0, 0, 0, time.UTC),
		Availability: []Availability{{Day: "Monday", Start: "09:00", End: "10:00"}},
	}}
	original.Courses = []Course{{ID: "course-1", Code: "SCI-101"}}
	original.CurrentUserID = "user-1"

	clone := original.Clone()
	clone.Users[0].Name = "changed"
	clone.Users[0].Availability[0].Start = "23:00"
	clone.Courses[0].Code = "changed"

	if original.Users[0].Name != "Eli" {
		t.Fatalf("clone mutation leaked into original user: %q", original.Users[0].Name)
	}
	if original.Users[0].Availability[0].Start != "09:00" {
		t.Fatalf("clone mutation leaked into original availability: %q", original.Users[0].Availability[0].Start)
	}
	if original.Courses[0].Code != "SCI-101" {
		t.Fatalf("clone mutation leaked into original course: %q", original.Courses[0].Code)
	}
}

func TestUserByHandleIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	doc := Empty()
	doc.Users = []User{{ID: "user-1", Handle: "eli_monroe"}}

	if _, ok := doc.UserByHandle("ELI_MONROE"); !ok {
		t.Fatal("expected case-insensitive handle match")
	}
	if _, ok := doc.UserByHandle("ghost"); ok {
		t.Fatal("expected no match for unknown handle")
	}
}

func TestKnownStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []string{StatusPending, StatusConfirmed, StatusDeclined} {
		if !KnownStatus(status) {
			t.Fatalf("expected %q to be a known status", status)
		}
	}
	for _, status := range []string{"", "cancelled", "PENDING"} {
		if KnownStatus(status) {
			t.Fatalf("expected %q to be unknown", status)
		}
	}
}
