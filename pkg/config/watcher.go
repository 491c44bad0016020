package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-pkgz/lgr"
)

// Watcher reloads configuration file on change and hands every valid
// version to the callback. Invalid versions are logged and skipped.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func(*Config)
}

// NewWatcher makes a watcher for the config file
func NewWatcher(path string, onChange func(*Config)) *Watcher {
	return &Watcher{path: path, debounce: 250 * time.Millisecond, onChange: onChange}
}

// Watch blocks until context is canceled
func (w *Watcher) Watch(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	file := filepath.Join(dir, filepath.Base(w.path))

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// watch the directory, editors replace files on save
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// debounce to avoid partial writes
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			cfg, err := Load(w.path)
			if err != nil {
				lgr.Printf("[WARN] config %s not reloaded: %v", w.path, err)
				return
			}
			lgr.Printf("[INFO] config %s reloaded", w.path)
			w.onChange(cfg)
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Name == file && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reload()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			lgr.Printf("[WARN] config watcher error: %v", err)
		}
	}
}
