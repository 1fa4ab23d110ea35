// Package watch notices changes to recent-project sources and fires a
// debounced callback, typically a catalog refresh over the bus.
package watch

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/logging"
)

// IDEs rewrite their options files through temp files, so one save produces
// several events.
const defaultDebounce = 500 * time.Millisecond

var errRunTwice = errors.New("watch: Run called more than once")

// Config holds the parameters for a Watcher.
type Config struct {
	// Dirs are watched non-recursively. Missing dirs are skipped.
	Dirs []string

	// Names are the file base names that trigger the callback. Directory
	// creation always triggers it, since a new IDE version brings a new
	// config dir.
	Names []string

	Debounce time.Duration

	// OnChange receives the changed paths once the debounce window closes.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher monitors source directories. Run must be called exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	names    map[string]struct{}
	debounce time.Duration
	log      *logging.Logger
	started  atomic.Bool
}

func New(cfg Config, log *logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		names:    make(map[string]struct{}, len(cfg.Names)),
		debounce: debounce,
		log:      log.Named("watch"),
	}
	for _, n := range cfg.Names {
		w.names[n] = struct{}{}
	}

	watched := 0
	for _, dir := range cfg.Dirs {
		if err := fsw.Add(dir); err != nil {
			w.log.Debug("not watching", zap.String("dir", dir), zap.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		fsw.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("watch: none of %d directories could be watched", len(cfg.Dirs))
	}
	w.log.Info("watching", zap.Int("dirs", watched), zap.Strings("names", cfg.Names))
	return w, nil
}

// Run blocks until ctx is done, coalescing events and invoking OnChange.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errRunTwice
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		// skip if busy, but retry so pending events are not lost
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.log.Debug("sources changed", zap.Strings("paths", changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.log.Warn("change callback failed", zap.Error(err))
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("failed to close fsnotify", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			w.log.Warn("fsnotify error", zap.Error(err))
		}
	}
}

// relevant filters events down to source files and new directories. A new
// directory is watched too, together with its options subdirectory.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
		return false
	}
	if _, ok := w.names[filepath.Base(evt.Name)]; ok {
		return true
	}
	if !evt.Has(fsnotify.Create) {
		return false
	}
	fi, err := os.Stat(evt.Name)
	if err != nil || !fi.IsDir() {
		return false
	}
	w.add(evt.Name)
	w.add(filepath.Join(evt.Name, "options"))
	return true
}

func (w *Watcher) add(dir string) {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		w.log.Debug("failed to watch new directory", zap.String("dir", dir), zap.Error(err))
	}
}
