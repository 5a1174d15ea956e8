package samples

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/cybershield/intel/internal/logger"
)

// Watcher serves a dataset file and reloads it when the file changes. A
// file that fails to parse leaves the previous dataset in place.
type Watcher struct {
	path string

	mu      sync.RWMutex
	current Dataset
	reloads int

	fsw *fsnotify.Watcher
}

// NewWatcher loads path and starts watching its directory. Watching the
// directory keeps editors that replace the file by rename working.
func NewWatcher(path string) (*Watcher, error) {
	d, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{path: filepath.Clean(path), current: d, fsw: fsw}, nil
}

// Current returns the dataset in effect.
func (w *Watcher) Current() Dataset {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Clone()
}

// Reloads reports how many times the file has been re-read successfully.
func (w *Watcher) Reloads() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reloads
}

// Run processes file events until ctx is done, then closes the watcher.
// onReload, when non-nil, is called after each successful reload.
func (w *Watcher) Run(ctx context.Context, onReload func(Dataset)) {
	defer w.fsw.Close()
	log := logger.WithFields(map[string]interface{}{"path": w.path})

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			d, err := Load(w.path)
			if err != nil {
				log.WithError(err).Warn("sample data reload failed, keeping previous dataset")
				continue
			}
			w.mu.Lock()
			w.current = d
			w.reloads++
			w.mu.Unlock()
			log.Info("sample data reloaded")
			if onReload != nil {
				onReload(d.Clone())
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("sample data watcher error")
		}
	}
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
