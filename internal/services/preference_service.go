package services

import (
	"fmt"
	"sync"

	"certachain/internal/storage"
)

// PreferenceService persists display preferences.
type PreferenceService struct {
	store storage.Store
	mu    sync.Mutex
}

// NewPreferenceService creates a new PreferenceService.
func NewPreferenceService(store storage.Store) *PreferenceService {
	return &PreferenceService{store: store}
}

// DarkMode reports whether dark mode is on. It is off until first toggled.
func (s *PreferenceService) DarkMode() (bool, error) {
	return storage.Load(s.store, storage.KeyDarkMode, false)
}

// ToggleDarkMode flips the dark mode flag and returns the new value.
func (s *PreferenceService) ToggleDarkMode() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.DarkMode()
	if err != nil {
		return false, err
	}
	if err := s.store.Set(storage.KeyDarkMode, !current); err != nil {
		return current, fmt.Errorf("failed to save dark mode: %w", err)
	}
	return !current, nil
}
