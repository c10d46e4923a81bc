package referentiel

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/iwvelando/staffing-forecast/internal/sizing"
	"go.uber.org/zap"
)

// Store holds the current référentiel loaded from a file. Readers get a
// private copy so a reload never changes a simulation in progress.
type Store struct {
	path   string
	logger *zap.Logger

	mu        sync.RWMutex
	standards []sizing.TaskStandard
	version   int
}

// NewStore loads the référentiel at path.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewStore(logger *zap.Logger, path string) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticStore wraps an in-memory référentiel that is never reloaded.
func NewStaticStore(standards []sizing.TaskStandard) *Store {
	return &Store{
		logger:    zap.NewNop(),
		standards: append([]sizing.TaskStandard(nil), standards...),
		version:   1,
	}
}

// Snapshot returns a copy of the current task standards.
func (s *Store) Snapshot() []sizing.TaskStandard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]sizing.TaskStandard(nil), s.standards...)
}

// Version increments on every successful reload.
func (s *Store) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Reload re-reads the file. On failure the previous table is kept.
func (s *Store) Reload() error {
	if s.path == "" {
		return fmt.Errorf("référentiel store has no file")
	}
	standards, err := LoadFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.standards = standards
	s.version++
	version := s.version
	s.mu.Unlock()

	s.logger.Info("référentiel loaded",
		zap.String("op", "referentiel.Reload"),
		zap.String("path", s.path),
		zap.Int("standards", len(standards)),
		zap.Int("version", version),
	)
	return nil
}

// Watch reloads the store whenever its file is written or replaced, until
// ctx is done. The parent directory is watched so editors that rename a new
// file into place are picked up.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("référentiel store has no file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("référentiel reload failed, keeping previous table",
					zap.String("op", "referentiel.Watch"),
					zap.String("path", s.path),
					zap.Error(err),
				)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("fsnotify error",
				zap.String("op", "referentiel.Watch"),
				zap.Error(err),
			)
		}
	}
}
