package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/internal/treefile"
)

// reloadDelay coalesces the burst of events editors produce on save.
const reloadDelay = 150 * time.Millisecond

// treeWatcher reloads one tree file when it changes.
type treeWatcher struct {
	w      *fsnotify.Watcher
	path   string
	abs    string
	delay  time.Duration
	logger *log.Logger
}

// newTreeWatcher starts watching the directory of path. Changes made after
// it returns are observed by run.
func newTreeWatcher(path string, logger *log.Logger) (*treeWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &treeWatcher{w: w, path: path, abs: abs, delay: reloadDelay, logger: logger}, nil
}

// run hands every successfully parsed tree to install. Parse errors are
// logged and the previous tree stays on screen. Returns when ctx is done
// and closes the watcher.
func (tw *treeWatcher) run(ctx context.Context, install func(*arbor.Tree)) error {
	defer tw.w.Close()
	tw.logger.Info("Watching", "path", tw.path)

	timer := time.NewTimer(tw.delay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-tw.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != tw.abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(tw.delay)

		case err, ok := <-tw.w.Errors:
			if !ok {
				return nil
			}
			tw.logger.Warn("watch", "err", err)

		case <-timer.C:
			t, err := treefile.Load(tw.path)
			if err != nil {
				tw.logger.Error("Reload failed; keeping previous tree", "err", err)
				continue
			}
			tw.logger.Info("Reloaded", "path", tw.path, "nodes", t.Len())
			install(t)
		}
	}
}

// watchTree watches path until ctx is done.
func watchTree(ctx context.Context, path string, install func(*arbor.Tree), logger *log.Logger) error {
	tw, err := newTreeWatcher(path, logger)
	if err != nil {
		return err
	}
	return tw.run(ctx, install)
}
