package tui

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"portfolio-terminal/internal/prefs"
	"portfolio-terminal/internal/theme"
)

// Switcher owns the "current theme" flag for one visitor. It is the
// target of the Footer's toggle callback; the view tree never sees it.
type Switcher struct {
	mu      sync.Mutex
	current theme.Name
	visitor string
	store   prefs.Store
	logger  *log.Logger
}

// NewSwitcher starts from the visitor's stored preference when one
// exists, otherwise from fallback.
func NewSwitcher(fallback theme.Name, visitor string, store prefs.Store, logger *log.Logger) *Switcher {
	if logger == nil {
		logger = log.Default()
	}
	s := &Switcher{current: fallback, visitor: visitor, store: store, logger: logger}
	if store == nil {
		return s
	}

	stored, err := store.Theme(visitor)
	switch {
	case err == nil:
		s.current = stored
	case errors.Is(err, prefs.ErrNotFound):
	default:
		logger.Warn("theme preference unreadable", "event", "prefs_read_failed", "err", err)
	}
	return s
}

// Current reports the selected theme name.
func (s *Switcher) Current() theme.Name {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Toggle flips the theme and persists the choice. Persistence failures
// are logged; the in-session switch still happens.
func (s *Switcher) Toggle() {
	s.mu.Lock()
	from := s.current
	s.current = theme.Toggle(from)
	to := s.current
	s.mu.Unlock()

	s.logger.Info("theme toggled", "event", "theme_toggled", "from", from, "to", to)
	if s.store == nil {
		return
	}
	if err := s.store.SetTheme(s.visitor, to); err != nil {
		s.logger.Warn("theme preference not saved", "event", "prefs_write_failed", "err", err)
	}
}
