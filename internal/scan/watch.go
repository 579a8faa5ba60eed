package scan

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"aegis/internal/logging"
)

// Watch follows root recursively and invokes onChange with the path of
// every file that is created, written, or removed. It is an auxiliary
// helper for callers that want incremental re-scans (an editor plugin, a
// CI bot polling a long-lived checkout) and is never invoked by Scan or
// by the coordinator's synchronous Analyze call; re-running an analysis
// on change is the caller's choice, not this package's.
//
// The returned stop function closes the underlying watcher; callers
// should defer it. Watch only adds directories that exist at call time
// plus any directory created afterwards — it does not watch files
// created inside a directory that itself did not exist yet until that
// directory's own create event is processed.
func Watch(root string, onChange func(path string)) (stop func() error, err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if walkErr := addDirs(w, root); walkErr != nil {
		w.Close()
		return nil, walkErr
	}

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
						_ = w.Add(event.Name)
					}
				}
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					onChange(event.Name)
				}
			case watchErr, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.ScanWarn("watch error: %v", watchErr)
			}
		}
	}()

	return w.Close, nil
}

// addDirs adds root and every directory beneath it to w, skipping the
// usual vendored/dependency directories so a watch on a large checkout
// doesn't exhaust the OS's inotify watch budget.
func addDirs(w *fsnotify.Watcher, dir string) error {
	if skipWatchDirs[filepath.Base(dir)] {
		return nil
	}
	if err := w.Add(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := addDirs(w, filepath.Join(dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

var skipWatchDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"vendor":       true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
}
