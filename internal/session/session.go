// Package session holds the active identity. There is at most one per
// process; it survives restarts through the "authUser" key and is
// removed on logout.
package session

import (
	"fmt"
	"sync"

	"certachain/internal/models"
	"certachain/internal/storage"
)

// Session is the process-wide active identity.
type Session struct {
	store   storage.Store
	current *models.User
	mu      sync.RWMutex
}

// New creates an empty session backed by store. Call Hydrate to restore
// a previously persisted identity.
func New(store storage.Store) *Session {
	return &Session{store: store}
}

// Hydrate restores the identity persisted by a previous Start.
func (s *Session) Hydrate() error {
	user, err := storage.Load[*models.User](s.store, storage.KeyAuthUser, nil)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = user
	return nil
}

// Current returns the active identity, if any.
func (s *Session) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return models.User{}, false
	}
	return *s.current, true
}

// Start makes user the active identity, replacing any previous one.
func (s *Session) Start(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(storage.KeyAuthUser, user); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.current = &user
	return nil
}

// Clear ends the session.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(storage.KeyAuthUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.current = nil
	return nil
}
