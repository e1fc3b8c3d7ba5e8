package repositories

import (
	"fmt"
	"sync"

	"certachain/internal/models"
	"certachain/internal/storage"

	"github.com/google/uuid"
)

// KVUserRepository keeps registered users under the "registeredUsers" key.
type KVUserRepository struct {
	store storage.Store
	users []models.RegisteredUser
	mu    sync.RWMutex
}

// NewKVUserRepository loads the registered users from store.
func NewKVUserRepository(store storage.Store) (*KVUserRepository, error) {
	saved, err := storage.Load(store, storage.KeyRegisteredUsers, []models.RegisteredUser{})
	if err != nil {
		return nil, fmt.Errorf("failed to load registered users: %w", err)
	}
	return &KVUserRepository{
		store: store,
		users: saved,
	}, nil
}

// Create appends a user and persists the collection. Email uniqueness is
// the caller's concern.
func (r *KVUserRepository) Create(user *models.RegisteredUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users = append(r.users, *user)
	if err := r.store.Set(storage.KeyRegisteredUsers, r.users); err != nil {
		r.users = r.users[:len(r.users)-1]
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetAll returns every registered user in registration order.
func (r *KVUserRepository) GetAll() ([]models.RegisteredUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.RegisteredUser, len(r.users))
	copy(all, r.users)
	return all, nil
}

// GetByEmail retrieves a user by exact, case-sensitive email.
func (r *KVUserRepository) GetByEmail(email string) (*models.RegisteredUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

// GetByID retrieves a user by id.
func (r *KVUserRepository) GetByID(id string) (*models.RegisteredUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
}
