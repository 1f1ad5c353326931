package executor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/starford/archivist/internal/models"
	"github.com/starford/archivist/internal/planner"
	"github.com/starford/archivist/internal/scanner"
	"github.com/starford/archivist/internal/storage"
	"github.com/starford/archivist/internal/taxonomy"
	"github.com/starford/archivist/internal/testutil"
)

const artifact = "lesson.html"

func ref(t *testing.T, s string) taxonomy.Day {
	t.Helper()
	d, err := taxonomy.ParseDay(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func scan(t *testing.T, store storage.Provider) *models.Tree {
	t.Helper()
	tree, err := scanner.New(store, artifact, testutil.Logger()).Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return tree
}

func runBulk(t *testing.T, store storage.Provider, date string, dryRun bool) *Summary {
	t.Helper()
	plan := planner.PlanBulk(scan(t, store), ref(t, date))
	ex := New(store, Options{Artifact: artifact, DryRun: dryRun, Logger: testutil.Logger()})
	sum, err := ex.Execute(plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return sum
}

func TestExecute_DaysIntoMonth(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-02-18", "2026-02-19")
	testutil.WriteFile(t, root, "2026-02-19/notes.txt", "extra")
	testutil.WriteFile(t, root, "2026-02-19/img/a.png", "png")

	sum := runBulk(t, store, "2026-03-01", false)

	if sum.Moved != 2 || sum.Skipped != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	for _, p := range []string{
		"2026-02/2026-02-18/lesson.html",
		"2026-02/2026-02-19/lesson.html",
		"2026-02/2026-02-19/notes.txt",
		"2026-02/2026-02-19/img/a.png",
	} {
		if !testutil.Exists(t, root, p) {
			t.Errorf("missing %s", p)
		}
	}
	for _, p := range []string{"2026-02-18", "2026-02-19"} {
		if testutil.Exists(t, root, p) {
			t.Errorf("root still contains %s", p)
		}
	}
	feb := taxonomy.Month{Year: 2026, Month: 2}
	if sum.Months[feb] != 2 {
		t.Errorf("per-month count = %d", sum.Months[feb])
	}
	if sum.Results[0].Checksum == "" {
		t.Error("expected artifact checksum")
	}
}

func TestExecute_MonthIntoYear(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.WriteFile(t, root, "2026-02/2026-02-19/lesson.html", "x")

	sum := runBulk(t, store, "2027-01-15", false)

	if sum.Moved != 1 || sum.Years[2026] != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if !testutil.Exists(t, root, "2026/2026-02/2026-02-19/lesson.html") {
		t.Error("month not moved into year")
	}
	if testutil.Exists(t, root, "2026-02") {
		t.Error("root month should be gone")
	}
}

func TestExecute_DayThroughNewMonthIntoYear(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-12-30")

	sum := runBulk(t, store, "2027-01-15", false)

	if sum.Moved != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if !testutil.Exists(t, root, "2026/2026-12/2026-12-30/lesson.html") {
		t.Error("day did not end up under its year")
	}
}

func TestExecute_Idempotent(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-01-05", "2026-02-19", "2026-03-02")

	first := runBulk(t, store, "2026-03-10", false)
	if first.Moved != 2 {
		t.Fatalf("first run moved %d", first.Moved)
	}
	before := testutil.Snapshot(t, root)

	second := runBulk(t, store, "2026-03-10", false)
	if second.Moved != 0 || second.Skipped != 0 || len(second.Results) != 0 {
		t.Errorf("second run = %+v", second)
	}
	if !reflect.DeepEqual(before, testutil.Snapshot(t, root)) {
		t.Error("second run changed the tree")
	}
}

func TestExecute_RepeatedPlanIsNoOp(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-02-19")

	plan := planner.PlanBulk(scan(t, store), ref(t, "2026-03-01"))
	ex := New(store, Options{Artifact: artifact, Logger: testutil.Logger()})
	if _, err := ex.Execute(plan); err != nil {
		t.Fatal(err)
	}
	sum, err := ex.Execute(plan)
	if err != nil {
		t.Fatalf("stale plan: %v", err)
	}
	if sum.Missing != 1 || sum.Moved != 0 {
		t.Errorf("stale plan summary = %+v", sum)
	}
	if !testutil.Exists(t, root, "2026-02/2026-02-19/lesson.html") {
		t.Error("archived day disappeared")
	}
}

func TestExecute_NeverOverwrite(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.WriteFile(t, root, "2026-02-19/lesson.html", "new")
	testutil.WriteFile(t, root, "2026/2026-02/2026-02-19/lesson.html", "archived")

	sum := runBulk(t, store, "2026-03-01", false)

	if sum.Skipped != 1 || sum.Moved != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	snap := testutil.Snapshot(t, root)
	if snap["2026/2026-02/2026-02-19/lesson.html"] != "archived" {
		t.Error("destination overwritten")
	}
	if snap["2026-02-19/lesson.html"] != "new" {
		t.Error("source must be left untouched")
	}
}

func TestExecute_PreArchivedEmptyDestination(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-02-19")
	testutil.Mkdir(t, root, "2026/2026-02/2026-02-19")

	plan := planner.PlanBulk(scan(t, store), ref(t, "2026-03-01"))
	if len(plan.Days) != 1 || plan.Days[0].DestPath != "2026/2026-02/2026-02-19" {
		t.Fatalf("plan = %+v", plan)
	}
	sum, err := New(store, Options{Artifact: artifact, Logger: testutil.Logger()}).Execute(plan)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Moved != 1 || sum.Results[0].Outcome != OutcomeMoved {
		t.Errorf("summary = %+v", sum)
	}
	if !testutil.Exists(t, root, "2026/2026-02/2026-02-19/lesson.html") {
		t.Error("lesson not moved into the existing empty folder")
	}
	if testutil.Exists(t, root, "2026-02-19") {
		t.Error("root copy should be gone")
	}
}

// failingRename fails every rename; directories are still created.
type failingRename struct {
	*storage.FS
}

func (f failingRename) Rename(oldPath, newPath string) error {
	return errors.New("rename failed")
}

func TestExecute_RetryAfterFailedRename(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-02-19")

	plan := planner.PlanBulk(scan(t, store), ref(t, "2026-03-01"))
	if _, err := New(failingRename{store}, Options{Artifact: artifact, Logger: testutil.Logger()}).Execute(plan); err == nil {
		t.Fatal("expected the rename failure to abort the run")
	}
	if !testutil.Exists(t, root, "2026-02/2026-02-19") {
		t.Fatal("expected an empty destination shell from the aborted run")
	}

	sum := runBulk(t, store, "2026-03-01", false)
	if sum.Moved != 1 || sum.Skipped != 0 {
		t.Fatalf("retry summary = %+v", sum)
	}
	if !testutil.Exists(t, root, "2026-02/2026-02-19/lesson.html") {
		t.Error("retry did not archive the lesson")
	}
	if testutil.Exists(t, root, "2026-02-19") {
		t.Error("root copy should be gone after the retry")
	}
}

func TestExecute_DryRunPurity(t *testing.T) {
	build := func() (string, *storage.FS) {
		root, store := testutil.TestTree(t)
		testutil.Lessons(t, root, "2025-12-31", "2026-02-18", "2026-02-19", "2027-01-03")
		testutil.WriteFile(t, root, "2026-02-19/notes.txt", "n")
		testutil.WriteFile(t, root, "2026-01/2026-01-02/lesson.html", "x")
		testutil.WriteFile(t, root, "2025/2025-12/2025-12-31/lesson.html", "old")
		return root, store
	}

	dryRoot, dryStore := build()
	before := testutil.Snapshot(t, dryRoot)
	dry := runBulk(t, dryStore, "2027-01-15", true)
	if !reflect.DeepEqual(before, testutil.Snapshot(t, dryRoot)) {
		t.Fatal("dry run changed the tree")
	}

	_, liveStore := build()
	live := runBulk(t, liveStore, "2027-01-15", false)

	if dry.Moved != live.Moved || dry.Skipped != live.Skipped || dry.Missing != live.Missing {
		t.Errorf("dry = %d/%d/%d, live = %d/%d/%d",
			dry.Moved, dry.Skipped, dry.Missing, live.Moved, live.Skipped, live.Missing)
	}
	if !reflect.DeepEqual(dry.Months, live.Months) || !reflect.DeepEqual(dry.Years, live.Years) {
		t.Errorf("per-period counts differ: dry %v %v, live %v %v", dry.Months, dry.Years, live.Months, live.Years)
	}
	if !dry.DryRun || live.DryRun {
		t.Error("DryRun flag not carried into summary")
	}
}

func TestExecute_ResumesPartialMove(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.WriteFile(t, root, "2026-02/2026-02-19/lesson.html", "moved earlier")
	testutil.WriteFile(t, root, "2026-02-19/notes.txt", "left behind")

	sum := runBulk(t, store, "2026-03-01", false)

	if sum.Moved != 1 || sum.Results[0].Outcome != OutcomeResumed {
		t.Fatalf("summary = %+v", sum)
	}
	if !testutil.Exists(t, root, "2026-02/2026-02-19/notes.txt") {
		t.Error("leftover sibling not moved")
	}
	if testutil.Exists(t, root, "2026-02-19") {
		t.Error("emptied source folder not removed")
	}
}

func TestExecute_SiblingConflictLeftInPlace(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.WriteFile(t, root, "2026-02/2026-02-19/lesson.html", "moved earlier")
	testutil.WriteFile(t, root, "2026-02/2026-02-19/notes.txt", "dest copy")
	testutil.WriteFile(t, root, "2026-02-19/notes.txt", "source copy")

	runBulk(t, store, "2026-03-01", false)

	snap := testutil.Snapshot(t, root)
	if snap["2026-02/2026-02-19/notes.txt"] != "dest copy" {
		t.Error("destination sibling overwritten")
	}
	if snap["2026-02-19/notes.txt"] != "source copy" {
		t.Error("conflicting source sibling must stay")
	}
}

func TestExecute_IOFailureAborts(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-02-19", "2026-02-20")
	// A file where the month folder should be makes mkdir fail.
	testutil.WriteFile(t, root, "2026-02", "not a directory")

	tree := scan(t, store)
	plan := planner.PlanBulk(tree, ref(t, "2026-03-01"))
	_, err := New(store, Options{Artifact: artifact, Logger: testutil.Logger()}).Execute(plan)
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if !testutil.Exists(t, root, "2026-02-19/lesson.html") || !testutil.Exists(t, root, "2026-02-20/lesson.html") {
		t.Error("sources must survive an aborted run")
	}
}
