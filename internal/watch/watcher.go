// Package watch turns edits to a graph directory on disk into debounced
// refresh requests.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sandeepkv93/lsqtable/internal/scheduler"
)

const (
	DefaultDelay = 300 * time.Millisecond
	RefreshID    = "graph-changed"
)

var ErrNoGraphDirs = errors.New("watch: no pages or journals directory")

// graphDirs are the graph subdirectories holding page files.
var graphDirs = []string{"pages", "journals"}

type Debouncer interface {
	Debounce(id string, reason scheduler.Reason, delay time.Duration) error
}

type Watcher struct {
	fs     *fsnotify.Watcher
	sched  Debouncer
	delay  time.Duration
	logger *slog.Logger
}

// New watches the pages and journals directories under root. Directories
// that do not exist are skipped; it is an error if neither exists.
func New(root string, sched Debouncer, delay time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	added := 0
	for _, name := range graphDirs {
		dir := filepath.Join(root, name)
		info, statErr := os.Stat(dir)
		if statErr != nil || !info.IsDir() {
			logger.Debug("graph directory not watched", "dir", dir)
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		added++
	}
	if added == 0 {
		_ = fw.Close()
		return nil, fmt.Errorf("%w under %s", ErrNoGraphDirs, root)
	}
	return &Watcher{fs: fw, sched: sched, delay: delay, logger: logger}, nil
}

// Run forwards page file changes to the scheduler until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("graph file changed", "file", ev.Name, "op", ev.Op.String())
			if err := w.sched.Debounce(RefreshID, scheduler.ReasonGraphChanged, w.delay); err != nil {
				w.logger.Warn("schedule refresh", "error", err)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".md", ".org":
		return true
	}
	return false
}
