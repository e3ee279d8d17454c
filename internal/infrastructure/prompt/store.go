// Package prompt holds the system prompt template and keeps it in sync with
// its file on disk.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

// ErrEmptyTemplate is returned when the template file has no content.
var ErrEmptyTemplate = errors.New("prompt template is empty")

// Store serves the current template text. It is safe for concurrent use.
type Store struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	text     string
	loadedAt time.Time
}

// Open reads the template at path. A missing or empty file is an error.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt path: %w", err)
	}
	s := &Store{path: abs, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the absolute path of the template file.
func (s *Store) Path() string { return s.path }

// Template returns the current template text.
func (s *Store) Template() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// LoadedAt reports when the template was last read successfully.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Reload rereads the file. On failure the previous text is kept.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read prompt template %s: %w", s.path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s: %w", s.path, ErrEmptyTemplate)
	}

	s.mu.Lock()
	s.text = text
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Watch reloads the template whenever its file changes. It watches the parent
// directory so editors that replace the file by rename are picked up. Watch
// blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	d := newDebouncer(debounce, func() {
		if err := s.Reload(); err != nil {
			s.logger.Warn("prompt reload failed, keeping previous template", "path", s.path, "error", err)
			return
		}
		s.logger.Info("prompt template reloaded", "path", s.path)
	})
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Rename) {
				d.trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
