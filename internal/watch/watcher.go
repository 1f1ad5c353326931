// Package watch triggers index rebuilds when the site tree changes.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/archivist/internal/taxonomy"
)

// Options configures the watcher.
type Options struct {
	Artifact string        // lesson.html
	Debounce time.Duration // quiet period before onChange fires
}

// ChangeFunc is called once per debounced burst of relevant events. path is
// the last relevant path seen.
type ChangeFunc func(path string)

// Run watches root, its month and year folders and the month folders inside
// years, and calls onChange after relevant events settle. Relevant events
// touch a date-named folder or an artifact file; writes to index documents
// and temp files are ignored, so a rebuild does not retrigger itself.
// Run blocks until ctx is cancelled.
func Run(ctx context.Context, root string, opts Options, logger *slog.Logger, onChange ChangeFunc) error {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addTree(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time
	var last string

	schedule := func(p string) {
		last = p
		if timer == nil {
			timer = time.NewTimer(opts.Debounce)
			fire = timer.C
			return
		}
		timer.Reset(opts.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			timer, fire = nil, nil
			onChange(last)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)

			if ev.Op&fsnotify.Create != 0 && name != opts.Artifact && relevant(name, opts.Artifact) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addTree(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
			}

			if !relevant(name, opts.Artifact) {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			schedule(ev.Name)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// isContainer reports whether a folder with this name holds other date
// folders and so needs its own watch.
func isContainer(name string) bool {
	if _, err := taxonomy.ParseMonth(name); err == nil {
		return true
	}
	_, err := taxonomy.ParseYear(name)
	return err == nil
}

func relevant(name, artifact string) bool {
	if name == artifact || isContainer(name) {
		return true
	}
	_, err := taxonomy.ParseDay(name)
	return err == nil
}

// addTree watches dir and, below it, every month, year and day folder. Day
// folders are watched so that a late artifact write is seen.
func addTree(w *fsnotify.Watcher, dir string) error {
	if err := w.Add(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		switch {
		case isContainer(e.Name()):
			if err := addTree(w, p); err != nil {
				return err
			}
		default:
			if _, perr := taxonomy.ParseDay(e.Name()); perr == nil {
				if err := w.Add(p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
