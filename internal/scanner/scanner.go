// Package scanner enumerates date-named folders in the site tree.
//
// Scanning is read-only and never recurses beyond the fixed layout:
// root days, root months, root years, the days inside a month folder and
// the months inside a year folder. Names that do not parse are skipped.
package scanner

import (
	"errors"
	"io/fs"
	"log/slog"
	"path"

	"github.com/starford/archivist/internal/models"
	"github.com/starford/archivist/internal/storage"
	"github.com/starford/archivist/internal/taxonomy"
)

// Scanner lists date folders through a storage provider.
type Scanner struct {
	store    storage.Provider
	artifact string
	logger   *slog.Logger
}

// New creates a Scanner. artifact is the file that makes a day folder complete.
func New(store storage.Provider, artifact string, logger *slog.Logger) *Scanner {
	return &Scanner{store: store, artifact: artifact, logger: logger}
}

// Artifact returns the required artifact file name.
func (s *Scanner) Artifact() string { return s.artifact }

// subdirs returns the names of the immediate subdirectories of dir. A
// missing dir yields nothing.
func (s *Scanner) subdirs(dir string) ([]string, error) {
	entries, err := s.store.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// ListDayFolders returns the complete day folders directly under dir,
// sorted ascending.
func (s *Scanner) ListDayFolders(dir string) ([]models.DayFolder, error) {
	days, _, err := s.listDays(dir)
	return days, err
}

// ListOrphanDays returns the day-named folders directly under dir that lack
// the artifact.
func (s *Scanner) ListOrphanDays(dir string) ([]models.DayFolder, error) {
	_, orphans, err := s.listDays(dir)
	return orphans, err
}

func (s *Scanner) listDays(dir string) (complete, orphans []models.DayFolder, err error) {
	names, err := s.subdirs(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, name := range names {
		d, perr := taxonomy.ParseDay(name)
		if perr != nil {
			continue
		}
		p := path.Join(dir, name)
		ok, err := s.store.Exists(path.Join(p, s.artifact))
		if err != nil {
			return nil, nil, err
		}
		if ok {
			complete = append(complete, models.DayFolder{Day: d, Path: p})
		} else {
			s.logger.Debug("scanner: day folder without artifact", slog.String("path", p))
			orphans = append(orphans, models.DayFolder{Day: d, Path: p})
		}
	}
	return complete, orphans, nil
}

// ListMonthFolders returns the month folders directly under dir, sorted
// ascending. Their Days are not populated.
func (s *Scanner) ListMonthFolders(dir string) ([]models.MonthFolder, error) {
	names, err := s.subdirs(dir)
	if err != nil {
		return nil, err
	}
	var out []models.MonthFolder
	for _, name := range names {
		m, perr := taxonomy.ParseMonth(name)
		if perr != nil {
			continue
		}
		out = append(out, models.MonthFolder{Month: m, Path: path.Join(dir, name)})
	}
	return out, nil
}

// ListYearFolders returns the year folders directly under dir, sorted
// ascending. Their Months are not populated.
func (s *Scanner) ListYearFolders(dir string) ([]models.YearFolder, error) {
	names, err := s.subdirs(dir)
	if err != nil {
		return nil, err
	}
	var out []models.YearFolder
	for _, name := range names {
		y, perr := taxonomy.ParseYear(name)
		if perr != nil {
			continue
		}
		out = append(out, models.YearFolder{Year: y, Path: path.Join(dir, name)})
	}
	return out, nil
}

// Scan builds a full snapshot of the tree.
func (s *Scanner) Scan() (*models.Tree, error) {
	tree := &models.Tree{}
	var err error

	if tree.Days, tree.Orphans, err = s.listDays(""); err != nil {
		return nil, err
	}
	if tree.Months, err = s.populateMonths(""); err != nil {
		return nil, err
	}

	years, err := s.ListYearFolders("")
	if err != nil {
		return nil, err
	}
	for _, y := range years {
		months, err := s.populateMonths(y.Path)
		if err != nil {
			return nil, err
		}
		// A month filed under the wrong year is not part of that year.
		for _, m := range months {
			if m.Month.InYear() == y.Year {
				y.Months = append(y.Months, m)
			}
		}
		tree.Years = append(tree.Years, y)
	}

	s.logger.Debug("scanner: scanned tree",
		slog.Int("root_days", len(tree.Days)),
		slog.Int("root_months", len(tree.Months)),
		slog.Int("years", len(tree.Years)))
	return tree, nil
}

func (s *Scanner) populateMonths(dir string) ([]models.MonthFolder, error) {
	months, err := s.ListMonthFolders(dir)
	if err != nil {
		return nil, err
	}
	for i := range months {
		days, err := s.ListDayFolders(months[i].Path)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			if d.Day.InMonth() == months[i].Month {
				months[i].Days = append(months[i].Days, d)
			}
		}
	}
	return months, nil
}
