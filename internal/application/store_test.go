package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/studygroup/internal/document"
	"github.com/example/studygroup/internal/persistence"
	"github.com/example/studygroup/internal/persistence/memory"
	"github.com/example/studygroup/internal/testfixtures"
)

// newTestStore wires a Store over fresh in-memory persistence with
// deterministic identifiers and a fixed clock.
func newTestStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()

	mem := memory.New()
	ids := testfixtures.NewIDGenerator("id")
	clock := testfixtures.NewClock(time.Time{})
	return NewStore(mem, ids.NextFunc(), clock.NowFunc()), mem
}

// newSeededStore wires a Store over persistence preloaded with the shared
// fixture document (user-1 signed in).
func newSeededStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()

	mem := memory.New()
	mem.Seed(testfixtures.SeededDocument())
	ids := testfixtures.NewIDGenerator("id")
	clock := testfixtures.NewClock(time.Time{})
	return NewStore(mem, ids.NextFunc(), clock.NowFunc()), mem
}

// countingStore wraps a DocumentStore and counts writes, so tests can pin the
// one-save-per-operation discipline.
type countingStore struct {
	persistence.DocumentStore
	saves int
}

func (c *countingStore) Save(ctx context.Context, doc document.Document) error {
	c.saves++
	return c.DocumentStore.Save(ctx, doc)
}

func TestEveryMutationSavesExactlyOnce(t *testing.T) {
	t.Parallel()

	counting := &countingStore{DocumentStore: memory.New()}
	store := NewStore(counting, testfixtures.NewIDGenerator("id").NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc())
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "Eli Monroe", "eli_monroe"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if counting.saves != 1 {
		t.Fatalf("expected 1 save after CreateUser, got %d", counting.saves)
	}

	// Enroll creates the course and the enrollment; both must land in one
	// load/save cycle, never two round trips.
	if _, err := store.Enroll(ctx, "cpsc 2150-001"); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if counting.saves != 2 {
		t.Fatalf("expected 2 saves after Enroll, got %d", counting.saves)
	}

	courses, err := store.MyCourses(ctx)
	if err != nil {
		t.Fatalf("MyCourses failed: %v", err)
	}
	if len(courses) != 1 || courses[0].Code != "CPSC 2150-001" {
		t.Fatalf("expected the enrolled course to survive the single save, got %#v", courses)
	}
	if counting.saves != 2 {
		t.Fatalf("reads must not write, got %d saves", counting.saves)
	}
}

func TestFailedOperationsLeaveStorageUntouched(t *testing.T) {
	t.Parallel()

	counting := &countingStore{DocumentStore: memory.New()}
	store := NewStore(counting, testfixtures.NewIDGenerator("id").NextFunc(), testfixtures.NewClock(time.Time{}).NowFunc())
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "Eli Monroe", "eli_monroe"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := store.Enroll(ctx, "SCI-101"); err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	saves := counting.saves

	if _, err := store.Enroll(ctx, "SCI-101"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if counting.saves != saves {
		t.Fatalf("failed operation must not write, got %d saves (had %d)", counting.saves, saves)
	}

	// No-op mutations skip the write as well.
	if err := store.Unenroll(ctx, "GHOST-999"); err != nil {
		t.Fatalf("Unenroll of unknown course should be a no-op, got %v", err)
	}
	if err := store.RemoveAvailability(ctx, testfixtures.Slot("Friday", "08:00", "09:00")); err != nil {
		t.Fatalf("RemoveAvailability of absent slot should be a no-op, got %v", err)
	}
	if counting.saves != saves {
		t.Fatalf("no-op operations must not write, got %d saves (had %d)", counting.saves, saves)
	}
}

func TestDumpReturnsADetachedSnapshot(t *testing.T) {
	t.Parallel()

	store, _ := newSeededStore(t)
	ctx := context.Background()

	snapshot, err := store.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	snapshot.Users[0].Name = "changed"

	again, err := store.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if again.Users[0].Name != "Eli Monroe" {
		t.Fatalf("snapshot mutation leaked into the store: %q", again.Users[0].Name)
	}
}

func TestResetReplacesTheDocument(t *testing.T) {
	t.Parallel()

	store, _ := newSeededStore(t)
	ctx := context.Background()

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if _, found, err := store.CurrentUser(ctx); err != nil || found {
		t.Fatalf("expected no current user after reset, found=%v err=%v", found, err)
	}
	doc, err := store.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if len(doc.Users)+len(doc.Courses)+len(doc.Enrollments)+len(doc.StudySessions) != 0 {
		t.Fatalf("expected empty document after reset, got %#v", doc)
	}
}

func TestRepairPersistsPrunedEnrollments(t *testing.T) {
	t.Parallel()

	mem := memory.New()
	dirty := testfixtures.SeededDocument()
	dirty.Enrollments = append(dirty.Enrollments, testfixtures.Enrollment("user-1", "removed-course"))
	mem.Seed(dirty)

	counting := &countingStore{DocumentStore: mem}
	store := NewStore(counting, nil, nil)
	ctx := context.Background()

	applied, err := store.Repair(ctx)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if len(applied) != 1 || applied[0] != "prune-orphan-enrollments" {
		t.Fatalf("expected the orphan prune to run, got %v", applied)
	}
	if counting.saves != 1 {
		t.Fatalf("expected repair to persist once, got %d saves", counting.saves)
	}

	again, err := store.Repair(ctx)
	if err != nil {
		t.Fatalf("second Repair failed: %v", err)
	}
	if len(again) != 0 || counting.saves != 1 {
		t.Fatalf("expected second repair to be a no-op, applied=%v saves=%d", again, counting.saves)
	}
}

func TestOrphanEnrollmentsAreInvisibleToReads(t *testing.T) {
	t.Parallel()

	mem := memory.New()
	dirty := testfixtures.SeededDocument()
	dirty.Enrollments = append(dirty.Enrollments, testfixtures.Enrollment("user-1", "removed-course"))
	mem.Seed(dirty)

	store := NewStore(mem, nil, nil)

	courses, err := store.MyCourses(context.Background())
	if err != nil {
		t.Fatalf("MyCourses failed: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected the dangling enrollment to be pruned on load, got %#v", courses)
	}
}
