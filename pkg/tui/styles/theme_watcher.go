package styles

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watcherDebounce = 100 * time.Millisecond

// ThemeWatcher watches a user theme file and signals when it changes. It
// does not apply the theme itself: the callback hands the ref back to the
// caller so the reload happens on the TUI goroutine.
type ThemeWatcher struct {
	mu             sync.Mutex
	watcher        *fsnotify.Watcher
	currentRef     string
	stop           chan struct{}
	onThemeChanged func(ref string)
}

// NewThemeWatcher creates a watcher with the given change callback.
func NewThemeWatcher(onThemeChanged func(ref string)) *ThemeWatcher {
	return &ThemeWatcher{onThemeChanged: onThemeChanged}
}

// Watch starts watching the file behind ref. Built-in themes have no file
// and are not watched.
func (tw *ThemeWatcher) Watch(ref string) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.stopLocked()

	if ref == "" || ref == "dark" || ref == "light" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory rather than the file: editors that save via
	// rename would otherwise drop the watch.
	path := ThemePath(ref)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	tw.watcher = watcher
	tw.currentRef = ref
	tw.stop = make(chan struct{})

	go tw.loop(watcher, path, ref, tw.stop)
	return nil
}

func (tw *ThemeWatcher) loop(watcher *fsnotify.Watcher, path, ref string, stop chan struct{}) {
	var pending *time.Timer
	for {
		select {
		case <-stop:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: editors fire several events per save.
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(watcherDebounce, func() {
				slog.Debug("theme file changed", "theme", ref, "path", path)
				tw.onThemeChanged(ref)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("theme watcher error", "error", err)
		}
	}
}

// Stop stops watching.
func (tw *ThemeWatcher) Stop() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.stopLocked()
}

func (tw *ThemeWatcher) stopLocked() {
	if tw.watcher != nil {
		close(tw.stop)
		tw.watcher.Close()
		tw.watcher = nil
		tw.currentRef = ""
	}
}
