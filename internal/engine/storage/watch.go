package storage

import (
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/dshills/textcore/internal/logging"
)

// staleOps are the events after which a backing file no longer matches
// the unloaded units describing it.
const staleOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// sourceWatcher flags backing files that were modified, replaced or removed
// after being opened. Loads from a flagged file fail.
type sourceWatcher struct {
	fsw    *fsnotify.Watcher
	logger *log.Logger

	mu    sync.RWMutex
	stale map[string]bool // watched path -> changed since opened

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newSourceWatcher(logger *log.Logger) (*sourceWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &sourceWatcher{
		fsw:    fsw,
		logger: logger,
		stale:  make(map[string]bool),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *sourceWatcher) watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.stale[abs]; ok {
		return nil
	}
	if err := w.fsw.Add(abs); err != nil {
		return err
	}
	w.stale[abs] = false
	return nil
}

func (w *sourceWatcher) isChanged(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stale[abs]
}

func (w *sourceWatcher) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&staleOps != 0 {
				w.markStale(ev)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("source watcher error", logging.FieldError, err)
		}
	}
}

func (w *sourceWatcher) markStale(ev fsnotify.Event) {
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	w.mu.Lock()
	stale, watched := w.stale[abs]
	if watched {
		w.stale[abs] = true
	}
	w.mu.Unlock()

	if watched && !stale {
		w.logger.Warn("backing file changed", logging.FieldPath, abs, "op", ev.Op.String())
	}
}

// close stops the event loop and releases the watcher. Later calls return
// nil.
func (w *sourceWatcher) close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		<-w.done
		err = w.fsw.Close()
	})
	return err
}
