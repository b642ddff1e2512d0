// Package migration repairs loaded documents through a fixed sequence of
// named, idempotent steps. Earlier revisions of the system wrote documents
// that could reference deleted courses or users; every load runs the full
// sequence so no operation ever observes those rows.
package migration

import "github.com/example/studygroup/internal/document"

// Step is one repair applied to a loaded document. Apply reports whether the
// document was modified.
type Step struct {
	Name        string
	Description string
	Apply       func(doc *document.Document) bool
}

// Result describes a runner pass.
type Result struct {
	// Applied holds the names of the steps that modified the document, in
	// execution order. Empty for an already-clean document.
	Applied []string
}

// Changed reports whether any step modified the document.
func (r Result) Changed() bool {
	return len(r.Applied) > 0
}

// Steps returns the repair sequence in execution order.
func Steps() []Step {
	return []Step{
		{
			Name:        "ensure-defaults",
			Description: "materialize missing sequences, normalize session statuses, stamp the schema version",
			Apply:       ensureDefaults,
		},
		{
			Name:        "prune-orphan-enrollments",
			Description: "drop enrollments whose course no longer exists",
			Apply:       pruneOrphanEnrollments,
		},
		{
			Name:        "clear-dangling-current-user",
			Description: "clear the current-user pointer when the user no longer exists",
			Apply:       clearDanglingCurrentUser,
		},
	}
}

// Apply runs every step against the document in order.
func Apply(doc *document.Document) Result {
	var result Result
	for _, step := range Steps() {
		if step.Apply(doc) {
			result.Applied = append(result.Applied, step.Name)
		}
	}
	return result
}

func ensureDefaults(doc *document.Document) bool {
	changed := false

	if doc.Users == nil {
		doc.Users = []document.User{}
		changed = true
	}
	if doc.Courses == nil {
		doc.Courses = []document.Course{}
		changed = true
	}
	if doc.Enrollments == nil {
		doc.Enrollments = []document.Enrollment{}
		changed = true
	}
	if doc.StudySessions == nil {
		doc.StudySessions = []document.StudySession{}
		changed = true
	}

	for i, user := range doc.Users {
		if user.Availability == nil {
			doc.Users[i].Availability = []document.Availability{}
			changed = true
		}
	}

	for i, session := range doc.StudySessions {
		if !document.KnownStatus(session.Status) {
			doc.StudySessions[i].Status = document.StatusPending
			changed = true
		}
	}

	if doc.Version != document.Version {
		doc.Version = document.Version
		changed = true
	}

	return changed
}

func pruneOrphanEnrollments(doc *document.Document) bool {
	kept := doc.Enrollments[:0]
	for _, enrollment := range doc.Enrollments {
		if _, ok := doc.CourseByID(enrollment.CourseID); ok {
			kept = append(kept, enrollment)
		}
	}
	if len(kept) == len(doc.Enrollments) {
		return false
	}
	doc.Enrollments = append([]document.Enrollment{}, kept...)
	return true
}

func clearDanglingCurrentUser(doc *document.Document) bool {
	if doc.CurrentUserID == "" {
		return false
	}
	if _, ok := doc.UserByID(doc.CurrentUserID); ok {
		return false
	}
	doc.CurrentUserID = ""
	return true
}
