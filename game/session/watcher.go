package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/wricardo/greedy-grid-game/logging"
)

// PrunedCallback is called with the ID of a session dropped from memory
type PrunedCallback func(id string)

// Watcher drops in-memory sessions whose save file disappears from the
// sessions directory, e.g. when an operator deletes it by hand.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	manager  *Manager
	onPruned PrunedCallback
	logger   zerolog.Logger
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWatcher creates a watcher for dir that prunes sessions from manager
func NewWatcher(dir string, manager *Manager, onPruned PrunedCallback) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		watcher:  watcher,
		dir:      dir,
		manager:  manager,
		onPruned: onPruned,
		logger:   logging.Component("session-watcher"),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the sessions directory
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch sessions directory: %w", err)
	}

	w.wg.Add(1)
	go w.eventLoop()

	w.logger.Info().Str("path", w.dir).Msg("Session watcher started")
	return nil
}

// Stop stops the watcher and waits for the event loop to exit
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	id, ok := idFromFilename(filepath.Base(event.Name))
	if !ok {
		return
	}

	// A rename may have put a fresh save in place already
	if _, err := os.Stat(event.Name); err == nil {
		return
	}

	if err := w.manager.DeleteFromMemory(id); err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			w.logger.Error().Err(err).Str("session", id).Msg("Failed to prune session")
		}
		return
	}

	w.logger.Info().Str("session", id).Msg("Save file removed, session pruned")
	if w.onPruned != nil {
		w.onPruned(id)
	}
}
