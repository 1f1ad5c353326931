package scanner

import (
	"path/filepath"
	"testing"

	"github.com/starford/archivist/internal/storage"
	"github.com/starford/archivist/internal/testutil"
)

func TestListDayFolders_FiltersAndSorts(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-02-19", "2026-02-18", "2026-01-31")
	testutil.Mkdir(t, root, "2026-02-20")          // no artifact
	testutil.Mkdir(t, root, "tools")               // not a date
	testutil.Mkdir(t, root, "2026-13-01")          // out of range
	testutil.WriteFile(t, root, "2026-02-21", "x") // a file, not a folder

	s := New(store, "lesson.html", testutil.Logger())
	days, err := s.ListDayFolders("")
	if err != nil {
		t.Fatalf("ListDayFolders: %v", err)
	}
	var names []string
	for _, d := range days {
		names = append(names, d.Path)
	}
	want := []string{"2026-01-31", "2026-02-18", "2026-02-19"}
	if len(names) != len(want) {
		t.Fatalf("days = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("days[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	orphans, err := s.ListOrphanDays("")
	if err != nil {
		t.Fatalf("ListOrphanDays: %v", err)
	}
	if len(orphans) != 1 || orphans[0].Path != "2026-02-20" {
		t.Errorf("orphans = %+v", orphans)
	}
}

func TestListMonthAndYearFolders(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Mkdir(t, root, "2026-02")
	testutil.Mkdir(t, root, "2025-12")
	testutil.Mkdir(t, root, "2026")
	testutil.Mkdir(t, root, "2026-00")
	testutil.Mkdir(t, root, "current-month")

	s := New(store, "lesson.html", testutil.Logger())
	months, err := s.ListMonthFolders("")
	if err != nil {
		t.Fatalf("ListMonthFolders: %v", err)
	}
	if len(months) != 2 || months[0].Path != "2025-12" || months[1].Path != "2026-02" {
		t.Errorf("months = %+v", months)
	}
	years, err := s.ListYearFolders("")
	if err != nil {
		t.Fatalf("ListYearFolders: %v", err)
	}
	if len(years) != 1 || years[0].Path != "2026" {
		t.Errorf("years = %+v", years)
	}
}

func TestScan_MissingRootIsEmpty(t *testing.T) {
	store, err := storage.NewFS(filepath.Join(t.TempDir(), "site"))
	if err != nil {
		t.Fatal(err)
	}
	tree, err := New(store, "lesson.html", testutil.Logger()).Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(tree.Days)+len(tree.Months)+len(tree.Years) != 0 {
		t.Errorf("tree = %+v, want empty", tree)
	}
}

func TestScan_NestedLayout(t *testing.T) {
	root, store := testutil.TestTree(t)
	testutil.Lessons(t, root, "2026-03-02")
	testutil.WriteFile(t, root, "2026-02/2026-02-18/lesson.html", "a")
	testutil.WriteFile(t, root, "2026-02/2026-03-01/lesson.html", "misfiled")
	testutil.WriteFile(t, root, "2025/2025-12/2025-12-31/lesson.html", "b")
	testutil.Mkdir(t, root, "2025/2024-01")

	tree, err := New(store, "lesson.html", testutil.Logger()).Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(tree.Months) != 1 || len(tree.Months[0].Days) != 1 {
		t.Fatalf("root months = %+v", tree.Months)
	}
	if len(tree.Years) != 1 || len(tree.Years[0].Months) != 1 {
		t.Fatalf("years = %+v", tree.Years)
	}
	if got := tree.Years[0].Months[0].Days[0].Path; got != "2025/2025-12/2025-12-31" {
		t.Errorf("nested day path = %q", got)
	}

	all := tree.AllDays()
	if len(all) != 3 {
		t.Fatalf("AllDays = %+v", all)
	}
	if all[0].Day.String() != "2025-12-31" || all[2].Day.String() != "2026-03-02" {
		t.Errorf("AllDays order = %v, %v", all[0].Day, all[2].Day)
	}

	p, ok := tree.MonthPath(tree.Years[0].Months[0].Month)
	if !ok || p != "2025/2025-12" {
		t.Errorf("MonthPath = %q, %v", p, ok)
	}
}
