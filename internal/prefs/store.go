// Package prefs persists each visitor's chosen theme.
package prefs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"portfolio-terminal/internal/theme"
)

// ErrNotFound is returned when a visitor has no stored preference.
var ErrNotFound = errors.New("preference not found")

// Preference is one visitor's stored choice.
type Preference struct {
	Theme     theme.Name `json:"theme"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Store reads and writes theme preferences keyed by visitor.
type Store interface {
	Theme(visitor string) (theme.Name, error)
	SetTheme(visitor string, name theme.Name) error
}

// FileStore keeps preferences in a single JSON document, rewritten
// atomically on every change.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewFileStore returns a store at path, defaulting to the temp dir.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = filepath.Join(os.TempDir(), "portfolio-terminal-prefs.json")
	}
	return &FileStore{path: path, now: time.Now}
}

func (s *FileStore) Theme(visitor string) (theme.Name, error) {
	visitor = strings.TrimSpace(visitor)
	if visitor == "" {
		return "", ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.readLocked()
	if err != nil {
		return "", err
	}
	pref, ok := rows[visitor]
	if !ok {
		return "", ErrNotFound
	}
	if _, err := theme.Get(pref.Theme); err != nil {
		return "", ErrNotFound
	}
	return pref.Theme, nil
}

func (s *FileStore) SetTheme(visitor string, name theme.Name) error {
	visitor = strings.TrimSpace(visitor)
	if visitor == "" {
		return nil
	}
	if _, err := theme.Get(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.readLocked()
	if err != nil {
		return err
	}
	rows[visitor] = Preference{Theme: name, UpdatedAt: s.now().UTC()}
	return s.writeLocked(rows)
}

func (s *FileStore) readLocked() (map[string]Preference, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]Preference{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return map[string]Preference{}, nil
	}
	rows := map[string]Preference{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *FileStore) writeLocked(rows map[string]Preference) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, ".portfolio-prefs-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Chmod(0o600); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.Mutex
	rows map[string]theme.Name
}

func NewMemory() *Memory { return &Memory{rows: map[string]theme.Name{}} }

func (m *Memory) Theme(visitor string) (theme.Name, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.rows[visitor]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}

func (m *Memory) SetTheme(visitor string, name theme.Name) error {
	if _, err := theme.Get(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[visitor] = name
	return nil
}
