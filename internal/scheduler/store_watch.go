package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/portal/internal/logger"
	"github.com/MrSnakeDoc/portal/internal/store/filestore"
)

// ChangeKind classifies what happened to the store file.
type ChangeKind string

const (
	ChangeExternal ChangeKind = "external" // another writer replaced the file
	ChangeOwn      ChangeKind = "own"      // this process saved it
	ChangeCorrupt  ChangeKind = "corrupt"  // the file no longer parses
	ChangeRemoved  ChangeKind = "removed"  // the file is gone
)

// Change is one observed revision of the store file.
type Change struct {
	Kind     ChangeKind
	Revision string
	Err      error
}

// RevisionSource exposes the revisions the watcher compares against.
type RevisionSource interface {
	Path() string
	LastWritten() string
}

const defaultDebounce = 200 * time.Millisecond

// StoreWatcher logs edits made to the store file outside this process and
// flags the file when it stops parsing. It never repairs or reloads anything;
// sessions keep the copy they loaded.
type StoreWatcher struct {
	store    RevisionSource
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	// OnChange, when set, receives every classified change. Used by tests.
	OnChange func(Change)

	mu       sync.Mutex
	lastRev  string
	running  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewStoreWatcher creates a watcher for the store's file.
func NewStoreWatcher(store RevisionSource, log logger.Logger) (*StoreWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &StoreWatcher{
		store:    store,
		logger:   log,
		watcher:  w,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start watches the directory holding the store file. Atomic saves replace
// the file, so watching the file itself would lose track after the first one.
func (sw *StoreWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(sw.store.Path())
	if err := sw.watcher.Add(dir); err != nil {
		_ = sw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	sw.mu.Lock()
	sw.lastRev = sw.currentRevision()
	sw.running = true
	sw.mu.Unlock()

	sw.logger.Info("watching store file", logger.String("path", sw.store.Path()))
	go sw.run(ctx)
	return nil
}

// Stop ends the watch loop and releases the watcher.
func (sw *StoreWatcher) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.stopCh)
		sw.mu.Lock()
		running := sw.running
		sw.mu.Unlock()
		if running {
			<-sw.doneCh
		}
		_ = sw.watcher.Close()
	})
}

func (sw *StoreWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)

	base := filepath.Base(sw.store.Path())
	timer := time.NewTimer(sw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopCh:
			return

		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(sw.debounce)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("store watcher error", logger.Error(err))

		case <-timer.C:
			sw.Check()
		}
	}
}

// Check compares the file on disk with the last revision seen and reports
// what changed. It returns false when nothing did.
func (sw *StoreWatcher) Check() (Change, bool) {
	path := sw.store.Path()
	data, err := os.ReadFile(path)

	var change Change
	switch {
	case errors.Is(err, fs.ErrNotExist):
		change = Change{Kind: ChangeRemoved}
	case err != nil:
		sw.logger.Warn("failed to read store file", logger.String("path", path), logger.Error(err))
		return Change{}, false
	default:
		change.Revision = filestore.RevisionOf(data)
	}

	sw.mu.Lock()
	if change.Revision == sw.lastRev && change.Kind != ChangeRemoved {
		sw.mu.Unlock()
		return Change{}, false
	}
	if change.Kind == ChangeRemoved && sw.lastRev == "" {
		sw.mu.Unlock()
		return Change{}, false
	}
	sw.lastRev = change.Revision
	sw.mu.Unlock()

	if change.Kind == "" {
		if _, err := filestore.Decode(data); err != nil {
			change.Kind = ChangeCorrupt
			change.Err = err
		} else if change.Revision == sw.store.LastWritten() {
			change.Kind = ChangeOwn
		} else {
			change.Kind = ChangeExternal
		}
	}

	sw.report(path, change)
	return change, true
}

func (sw *StoreWatcher) report(path string, c Change) {
	switch c.Kind {
	case ChangeOwn:
		sw.logger.Debug("store file saved", logger.String("path", path), logger.String("revision", c.Revision))
	case ChangeExternal:
		sw.logger.Info("store file changed outside the portal, new sessions will load it",
			logger.String("path", path), logger.String("revision", c.Revision))
	case ChangeCorrupt:
		sw.logger.Warn("store file no longer parses, new sessions will use the built-in default",
			logger.String("path", path), logger.Error(c.Err))
	case ChangeRemoved:
		sw.logger.Warn("store file removed, the next new session will write the built-in default",
			logger.String("path", path))
	}
	if sw.OnChange != nil {
		sw.OnChange(c)
	}
}

func (sw *StoreWatcher) currentRevision() string {
	data, err := os.ReadFile(sw.store.Path())
	if err != nil {
		return ""
	}
	return filestore.RevisionOf(data)
}
