// SPDX-License-Identifier: MPL-2.0

// Package watch reports source changes under package directories.
//
// A Watcher monitors one or more root directories recursively and invokes a
// callback after a debounce period. Events within the debounce window are
// coalesced so the callback fires once with every changed file.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the delay between the last filesystem event and the
// callback. Editors often write a temp file then rename it over the original.
const defaultDebounce = 300 * time.Millisecond

// defaultIgnores are always excluded. Hidden paths match what the build
// treats as non-inputs.
var defaultIgnores = []string{
	"**/.*",
	"**/.*/**",
	"**/*.swp",
	"**/*~",
	"**/#*#",
}

// ErrInvalidWatchConfig is the sentinel error wrapped by InvalidWatchConfigError.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are the directories watched recursively. At least one is required.
		Roots []string

		// Ignore are additional doublestar patterns, matched against paths
		// relative to their root, that never trigger callbacks.
		Ignore []string

		// Debounce is the quiet period after the last event before the
		// callback fires. Zero or negative values use defaultDebounce.
		Debounce time.Duration

		// OnChange receives the absolute paths of the changed files, sorted.
		// A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives warnings. Nil means slog.Default().
		Logger *slog.Logger
	}

	// InvalidWatchConfigError lists every invalid Config field.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}

	// Watcher monitors roots and fires a debounced callback when files
	// change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []string
		ignores  []string
		logger   *slog.Logger
		debounce time.Duration
		started  atomic.Bool
	}
)

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	return fmt.Sprintf("invalid watch config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidWatchConfig for errors.Is() compatibility.
func (e *InvalidWatchConfigError) Unwrap() error { return ErrInvalidWatchConfig }

// Validate checks that there is at least one non-empty root and that every
// ignore pattern is a valid doublestar glob.
func (c Config) Validate() error {
	var errs []error
	if len(c.Roots) == 0 {
		errs = append(errs, errors.New("no roots to watch"))
	}
	for i, r := range c.Roots {
		if r == "" {
			errs = append(errs, fmt.Errorf("root %d is empty", i))
		}
	}
	for _, pat := range c.Ignore {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("invalid ignore pattern %q", pat))
		}
	}
	if len(errs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: errs}
	}
	return nil
}

// New creates a Watcher and registers every non-ignored directory under
// each root.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	roots := make([]string, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", r, err)
		}
		roots = append(roots, abs)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		logger:   logger,
		debounce: debounce,
	}

	for _, root := range roots {
		if err := w.addDirectories(root); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn("watch: close after init failure", "error", closeErr)
			}
			return nil, err
		}
	}
	return w, nil
}

// Run blocks until ctx is canceled, dispatching debounced callbacks. It
// returns nil on cancellation and an error if the watcher breaks. A callback
// still running when the next batch is due delays that batch.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
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
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("watch: previous run still in progress, retrying")
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

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Warn("watch: callback failed", "error", err)
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
			w.logger.Warn("watch: close fsnotify", "error", err)
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
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if _, ignored := w.relative(evt.Name); ignored {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
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
			if brokenWatcher(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// addDirectories adds root and every non-ignored directory below it.
// Inaccessible directories are skipped with a warning.
func (w *Watcher) addDirectories(root string) error {
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			if path == root {
				return walkDirErr
			}
			w.logger.Warn("watch: skipping inaccessible path", "path", path, "error", walkDirErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, ignored := w.relative(path); ignored {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk %s: %w", root, walkErr)
	}
	return nil
}

// maybeAddDir watches a directory created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addDirectories(path); err != nil {
		w.logger.Warn("watch: add new directory", "path", path, "error", err)
	}
}

// relative returns path relative to the root containing it and whether it
// is ignored. Paths outside every root are ignored.
func (w *Watcher) relative(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || (len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)) {
			continue
		}
		return rel, w.isIgnored(rel)
	}
	return "", true
}

// isIgnored reports whether rel matches an ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	if rel == "." {
		return false
	}
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
