package repositories

import "certachain/internal/models"

// UserRepository defines the interface for the registered-users collection.
type UserRepository interface {
	Create(user *models.RegisteredUser) error
	GetAll() ([]models.RegisteredUser, error)
	GetByEmail(email string) (*models.RegisteredUser, error)
	GetByID(id string) (*models.RegisteredUser, error)
}
