package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MuthoniGathiithi/filehound/internal/config"
	"github.com/MuthoniGathiithi/filehound/internal/errdefs"
	"github.com/MuthoniGathiithi/filehound/internal/log"
	"github.com/fsnotify/fsnotify"
)

// Indexer is what the watcher needs from the indexing layer.
type Indexer interface {
	IndexFile(path string) error
}

// AccessLog receives the access events the watcher observes, so recency
// ranking keeps working without the user ever recording accesses by hand.
type AccessLog interface {
	AppendAccessEvent(path, kind string, ts time.Time, context string) error
	Delete(path string) error
}

// Watcher keeps the index live: it re-indexes files as they change under
// the configured roots and records created/modified events in the access
// history.
type Watcher struct {
	watcher   *fsnotify.Watcher
	indexer   Indexer
	accessLog AccessLog
	config    *config.Config
	running   bool
	mu        sync.Mutex
	done      chan struct{}
}

func New(indexer Indexer, accessLog AccessLog, cfg *config.Config) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeWatcherFailed, "failed to create watcher", err)
	}

	return &Watcher{
		watcher:   w,
		indexer:   indexer,
		accessLog: accessLog,
		config:    cfg,
		done:      make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	// Create a new watcher if the previous one was closed
	if w.watcher == nil {
		newWatcher, err := fsnotify.NewWatcher()
		if err != nil {
			w.mu.Unlock()
			return errdefs.NewCustomError(errdefs.ErrTypeWatcherFailed, "failed to create watcher", err)
		}
		w.watcher = newWatcher
		w.done = make(chan struct{})
	}

	w.running = true
	w.mu.Unlock()

	for _, root := range w.config.Roots {
		if err := w.addWatches(root); err != nil {
			return err
		}
	}

	go w.eventLoop()
	log.Infof("watcher started")
	return nil
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.done)
	err := w.watcher.Close()
	w.watcher = nil // Allow recreation on next Start()
	log.Infof("watcher stopped")
	return err
}

func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) addWatches(root string) error {
	watchCount := 0
	errorCount := 0

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				log.Debugf("permission denied: %s", path)
				return nil
			}
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if path != root && !w.config.ShouldIndexDir(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			errorCount++
			if errorCount == 1 {
				log.Warnf("failed to add watch for %s: %v", path, err)
			}
			return nil
		}

		watchCount++
		return nil
	})

	if errorCount > 0 {
		log.Warnf("failed to add %d watches (added %d successfully)", errorCount, watchCount)
		log.Infof("if you hit inotify limits, increase with: sudo sysctl fs.inotify.max_user_watches=524288")
	} else {
		log.Infof("added %d directory watches", watchCount)
	}

	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Op&fsnotify.Create == fsnotify.Create {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if !w.config.ShouldIndexDir(path) {
				return
			}
			if err := w.watcher.Add(path); err != nil {
				log.Debugf("failed to watch new dir %s: %v", path, err)
			}
			return
		}

		if w.config.ShouldIndexFile(path) {
			if err := w.indexer.IndexFile(path); err != nil {
				log.Debugf("failed to index %s: %v", path, err)
			}
			w.recordAccess(path, "created")
		}
	}

	if event.Op&fsnotify.Write == fsnotify.Write {
		if w.config.ShouldIndexFile(path) {
			if err := w.indexer.IndexFile(path); err != nil {
				log.Debugf("failed to reindex %s: %v", path, err)
			}
			w.recordAccess(path, "modified")
		}
	}

	if event.Op&fsnotify.Remove == fsnotify.Remove {
		if err := w.accessLog.Delete(path); err != nil {
			log.Debugf("failed to delete %s: %v", path, err)
		}
	}

	if event.Op&fsnotify.Rename == fsnotify.Rename {
		if err := w.accessLog.Delete(path); err != nil {
			log.Debugf("failed to delete renamed file %s: %v", path, err)
		}
	}
}

func (w *Watcher) recordAccess(path, kind string) {
	if err := w.accessLog.AppendAccessEvent(path, kind, time.Now(), "watcher"); err != nil {
		log.Debugf("failed to record %s event for %s: %v", kind, path, err)
	}
}
