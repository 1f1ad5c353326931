// Package planner decides which date folders roll up into their parents.
//
// Every function here is pure: it reads a scanned tree and a reference date
// and returns moves. Nothing touches the filesystem, so a plan can be
// printed, dry-run, or executed.
package planner

import (
	"path"
	"sort"

	"github.com/starford/archivist/internal/models"
	"github.com/starford/archivist/internal/taxonomy"
)

// DayMove relocates a root-level day folder into its month folder.
type DayMove struct {
	Day       taxonomy.Day
	Source    string // e.g. 2026-02-19
	MonthPath string // e.g. 2026-02 or 2026/2026-02
	DestPath  string // e.g. 2026-02/2026-02-19
	// Resume marks a day whose artifact already reached DestPath on an
	// earlier, interrupted run; only the remaining siblings move.
	Resume bool
}

// MonthMove relocates a root-level month folder into its year folder.
type MonthMove struct {
	Month    taxonomy.Month
	Source   string // e.g. 2026-02
	YearPath string // e.g. 2026
	DestPath string // e.g. 2026/2026-02
}

// Plan is an ordered set of moves. Day moves run before month moves because
// a day may land in a month folder that is rolled up in the same run.
type Plan struct {
	Days   []DayMove
	Months []MonthMove
}

// Len returns the number of planned moves.
func (p Plan) Len() int { return len(p.Days) + len(p.Months) }

// Empty reports whether there is nothing to do.
func (p Plan) Empty() bool { return p.Len() == 0 }

// MonthGroup is the day moves that target one month, for summaries.
type MonthGroup struct {
	Month taxonomy.Month
	Moves []DayMove
}

// GroupByMonth groups day moves by destination month, preserving order.
func (p Plan) GroupByMonth() []MonthGroup {
	var out []MonthGroup
	for _, mv := range p.Days {
		m := mv.Day.InMonth()
		if n := len(out); n > 0 && out[n-1].Month == m {
			out[n-1].Moves = append(out[n-1].Moves, mv)
			continue
		}
		out = append(out, MonthGroup{Month: m, Moves: []DayMove{mv}})
	}
	return out
}

// monthDest returns the folder a day of month m should land in: wherever
// the month folder already lives, else a new root-level folder.
func monthDest(tree *models.Tree, m taxonomy.Month) (p string, exists bool) {
	if p, ok := tree.MonthPath(m); ok {
		return p, true
	}
	return m.String(), false
}

func dayMove(tree *models.Tree, d models.DayFolder) DayMove {
	mp, _ := monthDest(tree, d.Day.InMonth())
	return DayMove{
		Day:       d.Day,
		Source:    d.Path,
		MonthPath: mp,
		DestPath:  path.Join(mp, d.Day.String()),
	}
}

// PlanDayToMonth plans every day whose month differs from ref's month.
// Moves are ordered by month, then day.
func PlanDayToMonth(days []models.DayFolder, tree *models.Tree, ref taxonomy.Day) []DayMove {
	current := ref.InMonth()
	var out []DayMove
	for _, d := range days {
		if d.Day.InMonth() == current {
			continue
		}
		out = append(out, dayMove(tree, d))
	}
	sortDays(out)
	return out
}

// PlanMonthToYear plans every month folder whose year is strictly before ref.
// Only root-level month folders should be passed in.
func PlanMonthToYear(months []models.MonthFolder, ref taxonomy.Year) []MonthMove {
	var out []MonthMove
	for _, m := range months {
		y := m.Month.InYear()
		if y >= ref {
			continue
		}
		out = append(out, MonthMove{
			Month:    m.Month,
			Source:   m.Path,
			YearPath: y.String(),
			DestPath: path.Join(y.String(), m.Month.String()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// PlanResume finds root-level day folders that lost their artifact to an
// interrupted move: the same day exists, complete, somewhere else in the
// tree. Their leftover files still need to follow.
func PlanResume(orphans []models.DayFolder, tree *models.Tree) []DayMove {
	complete := make(map[taxonomy.Day]string)
	for _, d := range tree.AllDays() {
		complete[d.Day] = d.Path
	}
	var out []DayMove
	for _, o := range orphans {
		dest, ok := complete[o.Day]
		if !ok || dest == o.Path {
			continue
		}
		out = append(out, DayMove{
			Day:       o.Day,
			Source:    o.Path,
			MonthPath: path.Dir(dest),
			DestPath:  dest,
			Resume:    true,
		})
	}
	sortDays(out)
	return out
}

// PlanBulk plans a full pass: every past-month day into its month, every
// past-year month into its year. Month folders that the day moves will
// create at the root are included, so a dry run reports the same moves a
// live run performs.
func PlanBulk(tree *models.Tree, ref taxonomy.Day) Plan {
	days := PlanDayToMonth(tree.Days, tree, ref)
	days = append(days, PlanResume(tree.Orphans, tree)...)
	sortDays(days)

	months := append([]models.MonthFolder(nil), tree.Months...)
	seen := make(map[taxonomy.Month]struct{}, len(months))
	for _, m := range months {
		seen[m.Month] = struct{}{}
	}
	for _, mv := range days {
		m := mv.Day.InMonth()
		if _, ok := seen[m]; ok || mv.MonthPath != m.String() {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, models.MonthFolder{Month: m, Path: m.String()})
	}

	return Plan{Days: days, Months: PlanMonthToYear(months, ref.Year)}
}

// PlanYesterday plans only the day before ref. ref itself is the current
// day and is never planned.
func PlanYesterday(tree *models.Tree, ref taxonomy.Day) Plan {
	target := ref.Prev()
	var p Plan
	for _, d := range tree.Days {
		if d.Day == target {
			p.Days = append(p.Days, dayMove(tree, d))
		}
	}
	for _, mv := range PlanResume(tree.Orphans, tree) {
		if mv.Day == target {
			p.Days = append(p.Days, mv)
		}
	}
	return p
}

// PlanLastMonth plans only the root-level folder of the month before ref's
// month into its year folder.
func PlanLastMonth(tree *models.Tree, ref taxonomy.Day) Plan {
	target := ref.InMonth().Prev()
	var p Plan
	for _, m := range tree.Months {
		if m.Month != target {
			continue
		}
		y := m.Month.InYear()
		p.Months = append(p.Months, MonthMove{
			Month:    m.Month,
			Source:   m.Path,
			YearPath: y.String(),
			DestPath: path.Join(y.String(), m.Month.String()),
		})
	}
	return p
}

func sortDays(moves []DayMove) {
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].Day.Before(moves[j].Day) })
}
