// Package fsnotify implements the ports.Watcher interface using
// github.com/fsnotify/fsnotify. It recursively watches a repository
// directory, skips VCS and build artifacts, and debounces rapid events
// (editors often trigger multiple writes per save).
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// skipDirs are never descended into or watched.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".venv":        true,
	"__pycache__":  true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	".repolex":     true,
}

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fw: fw, done: make(chan struct{})}, nil
}

// Watch starts monitoring dir recursively. onChange receives the absolute
// path of each changed file.
func (w *Watcher) Watch(dir string, onChange func(path string)) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	err = filepath.Walk(abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if skipDirs[info.Name()] && path != abs {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	lastSeen := make(map[string]time.Time)
	var mu sync.Mutex

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				// New directories join the watch list.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						if !skipDirs[info.Name()] {
							w.fw.Add(path)
						}
					}
				}

				if ignored(path) {
					continue
				}

				mu.Lock()
				last, seen := lastSeen[path]
				now := time.Now()
				if seen && now.Sub(last) < debounceInterval {
					mu.Unlock()
					continue
				}
				lastSeen[path] = now
				mu.Unlock()

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					onChange(path)
				}

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers on its own

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and releases resources. Safe to call twice.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// ignored reports whether a changed path lives under a skipped directory.
func ignored(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if skipDirs[part] {
			return true
		}
	}
	return false
}
