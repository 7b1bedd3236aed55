package sheetfile

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	plotopts "github.com/goliatone/go-plotopts"
)

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithOnApply registers a callback invoked after each successful apply,
// including the initial one.
func WithOnApply(fn func(sheet plotopts.Sheet)) WatchOption {
	return func(w *Watcher) {
		w.onApply = fn
	}
}

// WithOnError registers a callback invoked when a reload or re-apply fails.
func WithOnError(fn func(err error)) WatchOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher re-applies a sheet file to a store whenever the file changes.
type Watcher struct {
	store   *plotopts.Store
	path    string
	watcher *fsnotify.Watcher
	onApply func(plotopts.Sheet)
	onError func(error)
	done    chan struct{}
	once    sync.Once
}

// Watch applies the sheet at path once, then keeps re-applying it whenever
// the file is rewritten. The parent directory is watched so editors that
// replace the file keep triggering reloads.
func Watch(store *plotopts.Store, path string, opts ...WatchOption) (*Watcher, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("sheetfile: resolve %s: %w", path, err)
	}

	w := &Watcher{
		store: store,
		path:  absolute,
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	if err := w.apply(); err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("sheetfile: watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(absolute)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("sheetfile: watch %s: %w", filepath.Dir(absolute), err)
	}
	w.watcher = fsWatcher

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if err := w.apply(); err != nil && w.onError != nil {
				w.onError(err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create)
}

func (w *Watcher) apply() error {
	sheet, err := Load(w.path)
	if err != nil {
		return err
	}
	if err := w.store.Import(sheet); err != nil {
		return fmt.Errorf("sheetfile: apply %s: %w", w.path, err)
	}
	if w.onApply != nil {
		w.onApply(sheet)
	}
	return nil
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.watcher != nil {
			err = w.watcher.Close()
		}
	})
	return err
}
