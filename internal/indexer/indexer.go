// Package indexer rewrites the generated regions of the derived index
// documents: one per month folder, one per year folder, and the root page.
//
// Each document owns hand-written markup around marker pairs (see
// BeginMarker and EndMarker); only the text between a pair is replaced. A
// document that does not exist is skipped unless scaffolding is enabled.
package indexer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/starford/archivist/internal/models"
	"github.com/starford/archivist/internal/report"
	"github.com/starford/archivist/internal/storage"
	"github.com/starford/archivist/internal/taxonomy"
)

// DefaultRecentCount is how many days the root "recent" region shows.
const DefaultRecentCount = 7

// Options configures a Rebuilder.
type Options struct {
	IndexFile   string // e.g. index.html
	Artifact    string // e.g. lesson.html
	RecentCount int
	Scaffold    bool // create missing month/year documents
	Printer     *report.Printer
	Logger      *slog.Logger
}

// Rebuilder regenerates index documents from a scanned tree.
type Rebuilder struct {
	store storage.Provider
	opts  Options
}

// Stats counts what a rebuild did to each document.
type Stats struct {
	Written   int
	Unchanged int
	Skipped   int // document does not exist
	Created   int // scaffolded and written
}

// New creates a Rebuilder.
func New(store storage.Provider, opts Options) *Rebuilder {
	if opts.RecentCount <= 0 {
		opts.RecentCount = DefaultRecentCount
	}
	if opts.Printer == nil {
		opts.Printer = report.Discard()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Rebuilder{store: store, opts: opts}
}

// Rebuild rewrites every month, year and root document. today marks the
// matching entry of the recent region. The first malformed document aborts
// the rebuild with ErrMarkerMissing.
func (r *Rebuilder) Rebuild(tree *models.Tree, today taxonomy.Day) (*Stats, error) {
	stats := &Stats{}
	days := tree.AllDays()

	for _, m := range tree.AllMonths() {
		if err := r.rebuildMonth(stats, m, days); err != nil {
			return stats, err
		}
	}
	for _, y := range tree.Years {
		if err := r.rebuildYear(stats, y, tree); err != nil {
			return stats, err
		}
	}
	if err := r.rebuildRoot(stats, days, today); err != nil {
		return stats, err
	}

	r.opts.Logger.Info("indexer: rebuild finished",
		slog.Int("days", len(days)),
		slog.Int("written", stats.Written),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("skipped", stats.Skipped))
	return stats, nil
}

func (r *Rebuilder) rebuildMonth(stats *Stats, m models.MonthFolder, days []models.DayFolder) error {
	docPath := path.Join(m.Path, r.opts.IndexFile)
	var links []link
	for _, d := range days {
		if d.Day.InMonth() != m.Month {
			continue
		}
		links = append(links, link{
			Href: rel(m.Path, path.Join(d.Path, r.opts.Artifact)),
			Text: d.Day.String(),
		})
	}
	listing, err := renderListing(links, "No lessons yet")
	if err != nil {
		return err
	}
	nav, err := renderFlatNav(groupDays(days, m.Path, r.opts.Artifact, flatLabels))
	if err != nil {
		return err
	}
	return r.update(stats, docPath, m.Month.String(), map[string]string{RegionListing: listing}, map[string]string{RegionNav: nav})
}

func (r *Rebuilder) rebuildYear(stats *Stats, y models.YearFolder, tree *models.Tree) error {
	docPath := path.Join(y.Path, r.opts.IndexFile)
	var links []link
	for _, m := range uniqueMonths(tree.AllMonths()) {
		if m.Month.InYear() != y.Year {
			continue
		}
		links = append(links, link{
			Href: rel(y.Path, path.Join(m.Path, r.opts.IndexFile)),
			Text: m.Month.String(),
		})
	}
	listing, err := renderListing(links, "No months yet")
	if err != nil {
		return err
	}
	nav, err := renderFlatNav(groupDays(tree.AllDays(), y.Path, r.opts.Artifact, flatLabels))
	if err != nil {
		return err
	}
	return r.update(stats, docPath, y.Year.String(), map[string]string{RegionListing: listing}, map[string]string{RegionNav: nav})
}

func (r *Rebuilder) rebuildRoot(stats *Stats, days []models.DayFolder, today taxonomy.Day) error {
	nav, err := renderRootNav(groupDays(days, "", r.opts.Artifact, sidebarLabels))
	if err != nil {
		return err
	}

	var recent []link
	for i := len(days) - 1; i >= 0 && len(recent) < r.opts.RecentCount; i-- {
		d := days[i]
		recent = append(recent, link{
			Href:  path.Join(d.Path, r.opts.Artifact),
			Text:  d.Day.InMonth().ShortName() + " " + strconv.Itoa(d.Day.Day),
			Date:  d.Day.String(),
			Today: d.Day == today,
		})
	}
	recentHTML, err := renderRecent(recent)
	if err != nil {
		return err
	}
	return r.update(stats, r.opts.IndexFile, "", map[string]string{RegionNav: nav, RegionRecent: recentHTML}, nil)
}

// update rewrites the required and optional regions of one document. title
// is used for scaffolding; an empty title means the document is never
// scaffolded.
func (r *Rebuilder) update(stats *Stats, docPath, title string, required, optional map[string]string) error {
	created := false
	doc, err := r.store.Read(docPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && r.opts.Scaffold && title != "":
		page, serr := renderScaffold(title, rel(path.Dir(docPath), r.opts.IndexFile))
		if serr != nil {
			return serr
		}
		doc, created = []byte(page), true
	case errors.Is(err, fs.ErrNotExist):
		r.opts.Logger.Debug("indexer: no document, skipping", slog.String("path", docPath))
		stats.Skipped++
		return nil
	case err != nil:
		return err
	}

	updated := doc
	for _, name := range sortedKeys(required) {
		if updated, err = ReplaceRegion(updated, name, required[name]); err != nil {
			return fmt.Errorf("indexer: %s: %w", docPath, err)
		}
	}
	for _, name := range sortedKeys(optional) {
		if !HasRegion(updated, name) {
			continue
		}
		if updated, err = ReplaceRegion(updated, name, optional[name]); err != nil {
			return fmt.Errorf("indexer: %s: %w", docPath, err)
		}
	}

	if !created && bytes.Equal(updated, doc) {
		stats.Unchanged++
		return nil
	}
	if err := r.store.Write(docPath, updated); err != nil {
		return err
	}
	if created {
		stats.Created++
		r.opts.Printer.Success("Created %s", docPath)
		return nil
	}
	stats.Written++
	r.opts.Printer.Success("Updated %s", docPath)
	return nil
}

type labeler func(d taxonomy.Day) (monthLabel, dayLabel string)

// sidebarLabels matches the root sidebar: "February" / "2/19".
func sidebarLabels(d taxonomy.Day) (string, string) {
	return d.InMonth().Name(), fmt.Sprintf("%d/%d", int(d.Month), d.Day)
}

// flatLabels matches month and year pages: "February 2026" / "February 19".
func flatLabels(d taxonomy.Day) (string, string) {
	m := d.InMonth()
	return m.Name() + " " + m.Year.String(), m.Name() + " " + strconv.Itoa(d.Day)
}

// groupDays nests days by year then month, newest first at both levels,
// days ascending within a month. Links are relative to from.
func groupDays(days []models.DayFolder, from, artifact string, label labeler) []navYear {
	byYear := make(map[taxonomy.Year]map[taxonomy.Month][]models.DayFolder)
	for _, d := range days {
		m := d.Day.InMonth()
		if byYear[m.Year] == nil {
			byYear[m.Year] = make(map[taxonomy.Month][]models.DayFolder)
		}
		byYear[m.Year][m] = append(byYear[m.Year][m], d)
	}

	years := make([]taxonomy.Year, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] > years[j] })

	var out []navYear
	for _, y := range years {
		months := make([]taxonomy.Month, 0, len(byYear[y]))
		for m := range byYear[y] {
			months = append(months, m)
		}
		sort.Slice(months, func(i, j int) bool { return months[j].Before(months[i]) })

		ny := navYear{Year: y.String()}
		for _, m := range months {
			ds := byYear[y][m]
			sort.Slice(ds, func(i, j int) bool { return ds[i].Day.Before(ds[j].Day) })
			nm := navMonth{Key: m.String()}
			for _, d := range ds {
				monthLabel, dayLabel := label(d.Day)
				nm.Name = monthLabel
				nm.Links = append(nm.Links, link{
					Href: rel(from, path.Join(d.Path, artifact)),
					Text: dayLabel,
					Date: d.Day.String(),
				})
			}
			ny.Months = append(ny.Months, nm)
		}
		out = append(out, ny)
	}
	return out
}

// uniqueMonths drops later duplicates of the same month key, keeping the
// root-level copy first in AllMonths order, and sorts ascending.
func uniqueMonths(months []models.MonthFolder) []models.MonthFolder {
	seen := make(map[taxonomy.Month]struct{}, len(months))
	var out []models.MonthFolder
	for _, m := range months {
		if _, dup := seen[m.Month]; dup {
			continue
		}
		seen[m.Month] = struct{}{}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// rel returns the slash-separated path to target as seen from dir.
func rel(dir, target string) string {
	if dir == "" {
		dir = "."
	}
	p, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	return filepath.ToSlash(p)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
