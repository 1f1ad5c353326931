// Package internal wires the archiver's components into the commands the
// CLI exposes.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/archivist/internal/apperr"
	"github.com/starford/archivist/internal/checksum"
	"github.com/starford/archivist/internal/executor"
	"github.com/starford/archivist/internal/indexer"
	"github.com/starford/archivist/internal/journal"
	"github.com/starford/archivist/internal/planner"
	"github.com/starford/archivist/internal/report"
	"github.com/starford/archivist/internal/scanner"
	"github.com/starford/archivist/internal/storage"
	"github.com/starford/archivist/internal/taxonomy"
	"github.com/starford/archivist/internal/watch"
)

// Mode selects which archive policy a run applies.
type Mode string

// Archive modes.
const (
	ModeBulk    Mode = "archive" // every past month, every past year
	ModeDaily   Mode = "daily"   // yesterday only
	ModeMonthly Mode = "monthly" // last month only
)

// runtime holds the components shared by every command.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	out     *report.Printer
	store   storage.Provider
	scanner *scanner.Scanner
	ref     taxonomy.Day
	pinned  bool // ref came from --date
	now     func() time.Time
}

func setup(opts []Option) (*runtime, error) {
	app := &application{out: os.Stdout, now: timeNow}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Structured logs go to stderr; stdout carries progress lines.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	ref := taxonomy.DayFromTime(app.now())
	if app.date != "" {
		d, err := taxonomy.ParseDay(app.date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q, use YYYY-MM-DD", apperr.ErrBadReferenceDate, app.date)
		}
		ref = d
	}

	store, err := storage.NewFS(cfg.Tree.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	logger.Debug("Configuration loaded",
		slog.String("root", store.Root()),
		slog.String("artifact", cfg.Tree.Artifact),
		slog.String("reference_date", ref.String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		out:     report.New(app.out),
		store:   store,
		scanner: scanner.New(store, cfg.Tree.Artifact, logger),
		ref:     ref,
		pinned:  app.date != "",
		now:     app.now,
	}, nil
}

// Archive plans and executes one archive pass. A live pass that moved
// anything is followed by an index rebuild.
func Archive(ctx context.Context, mode Mode, dryRun bool, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	started := rt.now()

	tree, err := rt.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	var plan planner.Plan
	switch mode {
	case ModeBulk:
		names := make([]string, 0, len(tree.Days))
		for _, d := range tree.Days {
			names = append(names, d.Path)
		}
		rt.out.Info("Found %d lesson folders", len(tree.Days))
		if len(names) > 0 {
			rt.out.Info("Current folders: %s", joinNames(names))
		}
		plan = planner.PlanBulk(tree, rt.ref)
	case ModeDaily:
		rt.out.Info("Archiving: %s", rt.ref.Prev())
		plan = planner.PlanYesterday(tree, rt.ref)
	case ModeMonthly:
		last := rt.ref.InMonth().Prev()
		rt.out.Info("Archiving: %s into %s/", last, last.InYear())
		plan = planner.PlanLastMonth(tree, rt.ref)
	default:
		return fmt.Errorf("unknown archive mode %q", mode)
	}

	if plan.Empty() {
		rt.out.Warning("Nothing to archive")
		return nil
	}

	if dryRun {
		rt.out.Info("[DRY RUN] Archiving lessons...")
	}
	ex := executor.New(rt.store, executor.Options{
		Artifact: rt.cfg.Tree.Artifact,
		DryRun:   dryRun,
		Printer:  rt.out,
		Logger:   rt.logger,
	})
	sum, execErr := ex.Execute(plan)

	if !dryRun && sum != nil && len(sum.Results) > 0 {
		rt.journal(mode, started, sum)
	}
	if execErr != nil {
		return fmt.Errorf("archive aborted: %w", execErr)
	}

	rt.printSummary(mode, sum)

	if dryRun {
		if mode == ModeBulk {
			rt.out.Info("This was a dry run. Use --execute to actually move folders.")
		} else {
			rt.out.Info("This was a dry run. Remove --dry-run to actually archive.")
		}
		return nil
	}
	if sum.Moved == 0 {
		return nil
	}
	return rt.rebuild(false)
}

// Rebuild rewrites every index document from the current tree.
func Rebuild(ctx context.Context, scaffold bool, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	return rt.rebuild(scaffold)
}

// Watch rebuilds the indexes once, then again after every settled change to
// the tree, until ctx is cancelled or the process is interrupted.
func Watch(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	if err := rt.rebuild(false); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return watch.Run(watchCtx, rt.store.Root(), watch.Options{
			Artifact: rt.cfg.Tree.Artifact,
			Debounce: rt.cfg.Watch.Debounce,
		}, rt.logger, func(path string) {
			rt.logger.Info("watch: tree changed", slog.String("path", path))
			if err := rt.rebuild(false); err != nil {
				rt.out.Failure("Rebuild failed: %v", err)
				rt.logger.Error("watch: rebuild failed", slog.String("error", err.Error()))
			}
		})
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			rt.logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-watchCtx.Done():
		}
		stop()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	rt.out.Info("Watcher stopped")
	return nil
}

// History prints the most recent journaled runs.
func History(ctx context.Context, limit int, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	if !rt.cfg.Journal.Enabled() {
		return fmt.Errorf("journal is disabled: set journal.path in the config")
	}
	db, err := openRecorder(rt.cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		rt.out.Info("No runs recorded")
		return nil
	}
	for _, r := range runs {
		rt.out.Step("#%d %s (reference %s) at %s: %d moved, %d skipped, %d missing",
			r.ID, r.Kind, r.ReferenceDate, r.StartedAt.Format("2006-01-02 15:04:05"), r.Moved, r.Skipped, r.Missing)
		for _, m := range r.Moves {
			line := fmt.Sprintf("  %-8s %s → %s", m.Outcome, m.Source, m.Dest)
			if m.Checksum != "" {
				line += " [" + checksum.Short(m.Checksum) + "]"
			}
			rt.out.Info("%s", line)
		}
	}
	return nil
}

// today is the day a rebuild marks as current. Without --date it follows
// the clock, so a long-running watch moves on at midnight.
func (rt *runtime) today() taxonomy.Day {
	if rt.pinned {
		return rt.ref
	}
	return taxonomy.DayFromTime(rt.now())
}

func (rt *runtime) rebuild(scaffold bool) error {
	tree, err := rt.scanner.Scan()
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	r := indexer.New(rt.store, indexer.Options{
		IndexFile:   rt.cfg.Tree.IndexFile,
		Artifact:    rt.cfg.Tree.Artifact,
		RecentCount: rt.cfg.Tree.RecentCount,
		Scaffold:    scaffold,
		Printer:     rt.out,
		Logger:      rt.logger,
	})
	stats, err := r.Rebuild(tree, rt.today())
	if err != nil {
		return fmt.Errorf("rebuild indexes: %w", err)
	}
	rt.out.Info("Indexes rebuilt: %d days, %d written, %d unchanged, %d created, %d without a document",
		len(tree.AllDays()), stats.Written, stats.Unchanged, stats.Created, stats.Skipped)
	return nil
}

func openRecorder(dsn string) (journal.Recorder, error) {
	db, err := journal.Open(dsn)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// journal records a live run. Journal failures are logged, never fatal: the
// tree is the source of truth.
func (rt *runtime) journal(mode Mode, started time.Time, sum *executor.Summary) {
	if !rt.cfg.Journal.Enabled() {
		return
	}
	db, err := openRecorder(rt.cfg.Journal.Path)
	if err != nil {
		rt.logger.Warn("journal: open failed", slog.String("error", err.Error()))
		return
	}
	defer db.Close()

	run := journal.Run{
		Kind:          string(mode),
		ReferenceDate: rt.ref.String(),
		StartedAt:     started,
		Moved:         sum.Moved,
		Skipped:       sum.Skipped,
		Missing:       sum.Missing,
	}
	for _, r := range sum.Results {
		run.Moves = append(run.Moves, journal.Move{
			Kind:     r.Kind,
			Source:   r.Source,
			Dest:     r.Dest,
			Outcome:  string(r.Outcome),
			Checksum: r.Checksum,
		})
	}
	if _, err := db.RecordRun(run); err != nil {
		rt.logger.Warn("journal: record failed", slog.String("error", err.Error()))
	}
}

func (rt *runtime) printSummary(mode Mode, sum *executor.Summary) {
	switch mode {
	case ModeDaily, ModeMonthly:
		for _, r := range sum.Results {
			if r.Outcome == executor.OutcomeMoved || r.Outcome == executor.OutcomeResumed {
				rt.out.Success("Archived %s into %s/", r.Source, parentOf(r.Dest))
			}
		}
		if sum.Moved == 0 {
			rt.out.Warning("Nothing to archive")
		}
		return
	}

	rt.out.Info("--- Summary ---")
	months := make([]taxonomy.Month, 0, len(sum.Months))
	for m := range sum.Months {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	rt.out.Info("Months archived: %d", len(months))
	for _, m := range months {
		rt.out.Info("  %s: %d lessons", m, sum.Months[m])
	}

	years := make([]taxonomy.Year, 0, len(sum.Years))
	for y := range sum.Years {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
	rt.out.Info("Years archived: %d", len(years))
	for _, y := range years {
		rt.out.Info("  %s: %d months", y, sum.Years[y])
	}
	rt.out.Success("Moved %d, skipped %d (already archived), %d gone", sum.Moved, sum.Skipped, sum.Missing)
}
