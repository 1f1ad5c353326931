// Package models defines the scanned shape of the site tree.
package models

import (
	"sort"

	"github.com/starford/archivist/internal/taxonomy"
)

// DayFolder is a complete day folder (its artifact exists).
type DayFolder struct {
	Day  taxonomy.Day
	Path string // relative to the tree root, slash separated
}

// MonthFolder is a month folder and the day folders archived inside it.
type MonthFolder struct {
	Month taxonomy.Month
	Path  string
	Days  []DayFolder
}

// YearFolder is a year folder and the month folders archived inside it.
type YearFolder struct {
	Year   taxonomy.Year
	Path   string
	Months []MonthFolder
}

// Tree is a snapshot of every date folder the scanner recognises.
type Tree struct {
	Days    []DayFolder   // root-level complete days
	Orphans []DayFolder   // root-level day-named folders without the artifact
	Months  []MonthFolder // root-level months
	Years   []YearFolder  // root-level years
}

// AllDays returns every complete day in the tree, wherever it lives, sorted
// ascending. A day present in two places is reported once, preferring the
// shallower copy.
func (t *Tree) AllDays() []DayFolder {
	seen := make(map[taxonomy.Day]struct{})
	var out []DayFolder
	add := func(days []DayFolder) {
		for _, d := range days {
			if _, dup := seen[d.Day]; dup {
				continue
			}
			seen[d.Day] = struct{}{}
			out = append(out, d)
		}
	}
	add(t.Days)
	for _, m := range t.Months {
		add(m.Days)
	}
	for _, y := range t.Years {
		for _, m := range y.Months {
			add(m.Days)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// AllMonths returns every month folder, root-level first, then those nested
// in year folders.
func (t *Tree) AllMonths() []MonthFolder {
	out := append([]MonthFolder(nil), t.Months...)
	for _, y := range t.Years {
		out = append(out, y.Months...)
	}
	return out
}

// MonthPath returns where m currently lives: the root-level folder if there
// is one, otherwise the copy nested in its year folder.
func (t *Tree) MonthPath(m taxonomy.Month) (string, bool) {
	for _, mf := range t.Months {
		if mf.Month == m {
			return mf.Path, true
		}
	}
	for _, y := range t.Years {
		for _, mf := range y.Months {
			if mf.Month == m {
				return mf.Path, true
			}
		}
	}
	return "", false
}
