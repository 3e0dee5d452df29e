// Package watch re-runs work when documents under a root change. Events are
// debounced so a burst of saves triggers one run.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fulmenhq/docneat/pkg/logger"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Handler receives the changed paths of one debounced batch, sorted.
type Handler func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Match reports whether a root-relative slash path is a document.
	Match func(rel string) bool
	// SkipDir reports whether a root-relative directory is left unwatched.
	SkipDir func(rel string) bool
}

type Watcher struct {
	root string
	opts Options
	fsw  *fsnotify.Watcher
	log  *logger.Logger

	mu      sync.Mutex
	pending map[string]bool
}

// New watches every directory under root.
func New(root string, opts Options, log *logger.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Match == nil {
		opts.Match = func(rel string) bool { return strings.HasSuffix(strings.ToLower(rel), ".md") }
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: abs, opts: opts, fsw: fsw, log: log.With("watch"), pending: map[string]bool{}}
	if err := w.addRecursive(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) skipDir(path string) bool {
	if path == w.root {
		return false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || base == "node_modules" {
		return true
	}
	return w.opts.SkipDir != nil && w.opts.SkipDir(w.rel(path))
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", logger.String("path", path), logger.Err(err))
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.skipDir(ev.Name) {
				if err := w.addRecursive(ev.Name); err != nil {
					w.log.Warn("failed to watch new directory", logger.String("path", ev.Name), logger.Err(err))
				}
			}
			return false
		}
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	if !w.opts.Match(w.rel(ev.Name)) {
		return false
	}
	w.mu.Lock()
	w.pending[ev.Name] = true
	w.mu.Unlock()
	w.log.Debug("change detected", logger.String("path", w.rel(ev.Name)), logger.String("op", ev.Op.String()))
	return true
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	w.pending = map[string]bool{}
	sort.Strings(out)
	return out
}

// Run delivers debounced batches to h until ctx is done. Handler errors are
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	defer func() { _ = w.fsw.Close() }()

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	w.log.Info("watching for changes", logger.String("root", w.root), logger.Duration("debounce", w.opts.Debounce))

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(ev) {
				timer.Reset(w.opts.Debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", logger.Err(err))
		case <-timer.C:
			batch := w.drain()
			if len(batch) == 0 {
				continue
			}
			if err := h(ctx, batch); err != nil {
				w.log.Error("handler failed", logger.Int("changed", len(batch)), logger.Err(err))
			}
		}
	}
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error { return w.fsw.Close() }
