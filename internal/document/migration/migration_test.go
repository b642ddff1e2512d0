package migration

import (
	"testing"

	"github.com/example/studygroup/internal/document"
	"github.com/example/studygroup/internal/testfixtures"
)

func appliedNames(result Result) map[string]struct{} {
	names := make(map[string]struct{}, len(result.Applied))
	for _, name := range result.Applied {
		names[name] = struct{}{}
	}
	return names
}

func TestApplyOnCleanDocumentIsNoOp(t *testing.T) {
	t.Parallel()

	doc := testfixtures.SeededDocument()

	result := Apply(&doc)
	if result.Changed() {
		t.Fatalf("expected no steps on a clean document, got %v", result.Applied)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	doc := document.Document{
		Enrollments:   []document.Enrollment{{UserID: "user-1", CourseID: "ghost"}},
		CurrentUserID: "ghost",
	}

	first := Apply(&doc)
	if !first.Changed() {
		t.Fatal("expected first pass to repair the document")
	}

	second := Apply(&doc)
	if second.Changed() {
		t.Fatalf("expected second pass to be a no-op, got %v", second.Applied)
	}
}

func TestEnsureDefaults(t *testing.T) {
	t.Parallel()

	doc := document.Document{
		Users:         []document.User{{ID: "user-1", Handle: "eli_monroe"}},
		StudySessions: []document.StudySession{{ID: "session-1", Status: "cancelled"}},
	}

	result := Apply(&doc)

	if _, ok := appliedNames(result)["ensure-defaults"]; !ok {
		t.Fatalf("expected ensure-defaults to run, got %v", result.Applied)
	}
	if doc.Courses == nil || doc.Enrollments == nil {
		t.Fatalf("expected missing sequences to be materialized, got %#v", doc)
	}
	if doc.Users[0].Availability == nil {
		t.Fatal("expected user availability to be materialized")
	}
	if doc.StudySessions[0].Status != document.StatusPending {
		t.Fatalf("expected unknown status to normalize to pending, got %q", doc.StudySessions[0].Status)
	}
	if doc.Version != document.Version {
		t.Fatalf("expected version %d, got %d", document.Version, doc.Version)
	}
}

func TestPruneOrphanEnrollments(t *testing.T) {
	t.Parallel()

	doc := document.Empty()
	doc.Courses = []document.Course{testfixtures.Course("course-1", "SCI-101")}
	doc.Enrollments = []document.Enrollment{
		testfixtures.Enrollment("user-1", "course-1"),
		testfixtures.Enrollment("user-1", "removed-course"),
		testfixtures.Enrollment("user-2", "course-1"),
	}

	result := Apply(&doc)

	if _, ok := appliedNames(result)["prune-orphan-enrollments"]; !ok {
		t.Fatalf("expected prune-orphan-enrollments to run, got %v", result.Applied)
	}
	if len(doc.Enrollments) != 2 {
		t.Fatalf("expected 2 surviving enrollments, got %d", len(doc.Enrollments))
	}
	for _, enrollment := range doc.Enrollments {
		if enrollment.CourseID != "course-1" {
			t.Fatalf("expected only live-course enrollments to survive, got %#v", enrollment)
		}
	}
}

func TestClearDanglingCurrentUser(t *testing.T) {
	t.Parallel()

	t.Run("clears when the user is gone", func(t *testing.T) {
		t.Parallel()

		doc := document.Empty()
		doc.CurrentUserID = "ghost"

		result := Apply(&doc)

		if _, ok := appliedNames(result)["clear-dangling-current-user"]; !ok {
			t.Fatalf("expected clear-dangling-current-user to run, got %v", result.Applied)
		}
		if doc.CurrentUserID != "" {
			t.Fatalf("expected current user to be cleared, got %q", doc.CurrentUserID)
		}
	})

	t.Run("keeps a live current user", func(t *testing.T) {
		t.Parallel()

		doc := document.Empty()
		doc.Users = []document.User{testfixtures.User("user-1", "Eli", "eli_monroe")}
		doc.CurrentUserID = "user-1"

		Apply(&doc)

		if doc.CurrentUserID != "user-1" {
			t.Fatalf("expected current user to survive, got %q", doc.CurrentUserID)
		}
	})
}

func TestStepsHaveUniqueNames(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for _, step := range Steps() {
		if step.Name == "" || step.Apply == nil {
			t.Fatalf("step %#v is incomplete", step.Name)
		}
		if _, ok := seen[step.Name]; ok {
			t.Fatalf("duplicate step name %q", step.Name)
		}
		seen[step.Name] = struct{}{}
	}
}
