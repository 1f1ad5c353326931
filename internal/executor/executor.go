// Package executor carries out archive plans against the site tree.
//
// Live and dry runs share every decision. The only difference is at the
// four mutation points (mkdir, rename, remove, and the existence checks that
// observe them): a dry run records the effect in an in-memory overlay instead
// of touching the disk, so later moves in the same plan see the tree as a
// live run would have left it.
package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/starford/archivist/internal/checksum"
	"github.com/starford/archivist/internal/planner"
	"github.com/starford/archivist/internal/report"
	"github.com/starford/archivist/internal/storage"
	"github.com/starford/archivist/internal/taxonomy"
)

// Outcome is what happened to one planned move.
type Outcome string

// Move outcomes.
const (
	OutcomeMoved   Outcome = "moved"
	OutcomeResumed Outcome = "resumed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeMissing Outcome = "missing"
)

// Move kinds.
const (
	KindDay   = "day"
	KindMonth = "month"
)

// Result records one executed move.
type Result struct {
	Kind     string
	Source   string
	Dest     string
	Outcome  Outcome
	Checksum string // artifact digest, day moves only
}

// Summary totals an executed plan.
type Summary struct {
	DryRun  bool
	Moved   int // includes resumed moves
	Skipped int
	Missing int
	Months  map[taxonomy.Month]int // days moved per month
	Years   map[taxonomy.Year]int  // months moved per year
	Results []Result
}

func newSummary(dryRun bool) *Summary {
	return &Summary{
		DryRun: dryRun,
		Months: make(map[taxonomy.Month]int),
		Years:  make(map[taxonomy.Year]int),
	}
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeMoved, OutcomeResumed:
		s.Moved++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeMissing:
		s.Missing++
	}
}

// Options configures an Executor.
type Options struct {
	Artifact string // required file of a day folder
	DryRun   bool
	Printer  *report.Printer
	Logger   *slog.Logger
}

// Executor performs planned moves.
type Executor struct {
	store    storage.Provider
	artifact string
	dryRun   bool
	out      *report.Printer
	logger   *slog.Logger

	// overlay holds simulated path states during a dry run:
	// true = present, false = absent.
	overlay map[string]bool
}

// New creates an Executor.
func New(store storage.Provider, opts Options) *Executor {
	if opts.Printer == nil {
		opts.Printer = report.Discard()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Executor{
		store:    store,
		artifact: opts.Artifact,
		dryRun:   opts.DryRun,
		out:      opts.Printer,
		logger:   opts.Logger,
	}
}

// Execute runs the plan: day moves first, then month moves. The first I/O
// error aborts the run; moves already made stay made.
func (e *Executor) Execute(plan planner.Plan) (*Summary, error) {
	e.overlay = make(map[string]bool)
	sum := newSummary(e.dryRun)

	for _, g := range plan.GroupByMonth() {
		e.out.Step("Month: %s (%d lessons)", g.Month, len(g.Moves))
		for _, mv := range g.Moves {
			res, err := e.moveDay(mv)
			if err != nil {
				return sum, err
			}
			sum.add(res)
			if res.Outcome == OutcomeMoved || res.Outcome == OutcomeResumed {
				sum.Months[g.Month]++
			}
		}
	}

	for _, mv := range plan.Months {
		e.out.Step("Year: %s", mv.YearPath)
		res, err := e.moveMonth(mv)
		if err != nil {
			return sum, err
		}
		sum.add(res)
		if res.Outcome == OutcomeMoved {
			sum.Years[mv.Month.InYear()]++
		}
	}

	e.logger.Info("executor: plan finished",
		slog.Bool("dry_run", e.dryRun),
		slog.Int("moved", sum.Moved),
		slog.Int("skipped", sum.Skipped),
		slog.Int("missing", sum.Missing))
	return sum, nil
}

func (e *Executor) moveDay(mv planner.DayMove) (Result, error) {
	res := Result{Kind: KindDay, Source: mv.Source, Dest: mv.DestPath}

	ok, err := e.exists(mv.Source)
	if err != nil {
		return res, err
	}
	if !ok {
		e.out.Info("  Nothing to archive: %s/ is gone", mv.Source)
		res.Outcome = OutcomeMissing
		return res, nil
	}

	if !mv.Resume {
		// A bare destination folder is left by an interrupted move and does
		// not count as archived.
		ok, err := e.exists(path.Join(mv.DestPath, e.artifact))
		if err != nil {
			return res, err
		}
		if ok {
			e.out.Info("  Skipped: %s/ (already exists in %s/)", mv.Source, mv.MonthPath)
			res.Outcome = OutcomeSkipped
			return res, nil
		}
	}

	if err := e.ensureDir(mv.MonthPath, true); err != nil {
		return res, err
	}
	if err := e.ensureDir(mv.DestPath, false); err != nil {
		return res, err
	}

	if mv.Resume {
		res.Outcome = OutcomeResumed
		res.Checksum = e.digest(path.Join(mv.DestPath, e.artifact))
	} else {
		src := path.Join(mv.Source, e.artifact)
		res.Outcome = OutcomeMoved
		res.Checksum = e.digest(src)
		if err := e.rename(src, path.Join(mv.DestPath, e.artifact)); err != nil {
			return res, err
		}
	}

	left, err := e.moveSiblings(mv)
	if err != nil {
		return res, err
	}
	if left > 0 {
		e.out.Warning("Left %d file(s) in %s/ (already present at destination)", left, mv.Source)
		return res, nil
	}
	if err := e.removeDir(mv.Source); err != nil {
		return res, err
	}
	return res, nil
}

// moveSiblings moves every entry of the source day folder other than the
// artifact. Each entry is checked before it moves, so an entry that already
// reached the destination is left where it is instead of being overwritten.
func (e *Executor) moveSiblings(mv planner.DayMove) (left int, err error) {
	entries, err := e.store.ReadDir(mv.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == e.artifact && !mv.Resume {
			continue
		}
		dst := path.Join(mv.DestPath, name)
		ok, err := e.exists(dst)
		if err != nil {
			return left, err
		}
		if ok {
			e.logger.Warn("executor: sibling already at destination",
				slog.String("source", path.Join(mv.Source, name)),
				slog.String("dest", dst))
			left++
			continue
		}
		if err := e.rename(path.Join(mv.Source, name), dst); err != nil {
			return left, err
		}
	}
	return left, nil
}

func (e *Executor) moveMonth(mv planner.MonthMove) (Result, error) {
	res := Result{Kind: KindMonth, Source: mv.Source, Dest: mv.DestPath}

	ok, err := e.exists(mv.Source)
	if err != nil {
		return res, err
	}
	if !ok {
		e.out.Info("  Nothing to archive: %s/ is gone", mv.Source)
		res.Outcome = OutcomeMissing
		return res, nil
	}
	if err := e.ensureDir(mv.YearPath, true); err != nil {
		return res, err
	}
	ok, err = e.exists(mv.DestPath)
	if err != nil {
		return res, err
	}
	if ok {
		e.out.Info("  Skipped: %s/ (already exists in %s/)", mv.Source, mv.YearPath)
		res.Outcome = OutcomeSkipped
		return res, nil
	}
	if err := e.rename(mv.Source, mv.DestPath); err != nil {
		return res, err
	}
	res.Outcome = OutcomeMoved
	return res, nil
}

// digest fingerprints an artifact for the journal. A read failure leaves the
// digest empty; the move itself decides whether the run fails.
func (e *Executor) digest(p string) string {
	data, err := e.store.Read(p)
	if err != nil {
		return ""
	}
	return checksum.Sum(data)
}

func (e *Executor) verb(live, dry string) string {
	if e.dryRun {
		return dry
	}
	return live
}

// exists consults the dry-run overlay first: the nearest recorded state of
// p or one of its ancestors wins. A recorded absent ancestor hides every
// descendant; a recorded present ancestor defers to the disk.
func (e *Executor) exists(p string) (bool, error) {
	for q := p; q != "." && q != "/" && q != ""; q = path.Dir(q) {
		state, ok := e.overlay[q]
		if !ok {
			continue
		}
		if q == p || !state {
			return state, nil
		}
		break
	}
	return e.store.Exists(p)
}

func (e *Executor) ensureDir(dir string, announce bool) error {
	ok, err := e.exists(dir)
	if err != nil || ok {
		return err
	}
	if e.dryRun {
		e.overlay[dir] = true
	} else if err := e.store.MkdirAll(dir); err != nil {
		return err
	}
	if announce {
		e.out.Info("  %s: %s/", e.verb("Created", "Would create"), dir)
	}
	return nil
}

func (e *Executor) rename(src, dst string) error {
	if e.dryRun {
		e.overlay[src] = false
		e.overlay[dst] = true
	} else if err := e.store.Rename(src, dst); err != nil {
		return err
	}
	e.out.Info("  %s: %s → %s", e.verb("Moved", "Would move"), src, dst)
	e.logger.Debug("executor: moved", slog.String("source", src), slog.String("dest", dst), slog.Bool("dry_run", e.dryRun))
	return nil
}

func (e *Executor) removeDir(dir string) error {
	if e.dryRun {
		e.overlay[dir] = false
	} else if err := e.store.RemoveDir(dir); err != nil {
		return fmt.Errorf("executor: remove emptied day folder: %w", err)
	}
	e.out.Info("  %s: %s/", e.verb("Removed empty", "Would remove"), dir)
	return nil
}
