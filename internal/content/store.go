package content

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Source hands out the current content snapshot.
type Source interface {
	Snapshot() *Content
}

// Store keeps the latest valid content document. Reloads swap the whole
// snapshot; readers never observe a partial update.
type Store struct {
	path   string
	logger *log.Logger
	cur    atomic.Pointer[Content]
}

// NewStore loads content from path, or the embedded default when path is empty.
func NewStore(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{path: path, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticStore wraps an already loaded document.
func NewStaticStore(c *Content) *Store {
	s := &Store{logger: log.Default()}
	s.cur.Store(c)
	return s
}

func (s *Store) Snapshot() *Content {
	return s.cur.Load()
}

// Path returns the backing file, "" for embedded content.
func (s *Store) Path() string { return s.path }

// Reload re-reads the backing document. On failure the previous
// snapshot stays in place.
func (s *Store) Reload() error {
	var (
		c   *Content
		err error
	)
	if s.path == "" {
		c, err = Default()
	} else {
		c, err = LoadFile(s.path)
	}
	if err != nil {
		return err
	}
	s.cur.Store(c)
	return nil
}

// Watch reloads the document whenever its file changes, until ctx ends.
// The parent directory is watched so editors that replace the file by
// rename are picked up too.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create content watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			s.reloadLogged(target, "write")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				s.reloadLogged(target, "overflow")
				continue
			}
			s.logger.Warn("content watcher error", "event", "content_watch_error", "err", err)
		}
	}
}

func (s *Store) reloadLogged(target, trigger string) {
	if err := s.Reload(); err != nil {
		s.logger.Warn("content reload failed", "event", "content_reload_failed", "path", target, "trigger", trigger, "err", err)
		return
	}
	s.logger.Info("content reloaded", "event", "content_reloaded", "path", target, "trigger", trigger)
}
