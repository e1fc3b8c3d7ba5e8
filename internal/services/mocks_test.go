package services_test

import (
	"context"

	"certachain/internal/chain"
	"certachain/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.RegisteredUser) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetAll() ([]models.RegisteredUser, error) {
	args := m.Called()
	return args.Get(0).([]models.RegisteredUser), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.RegisteredUser, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegisteredUser), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.RegisteredUser, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegisteredUser), args.Error(1)
}

// MockChain is a mock implementation of services.Chain
type MockChain struct {
	mock.Mock
}

func (m *MockChain) Issue(ctx context.Context, certificate models.Certificate) (*chain.IssueReceipt, error) {
	args := m.Called(ctx, certificate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chain.IssueReceipt), args.Error(1)
}

func (m *MockChain) Verify(ctx context.Context, certificateID string, known []models.Certificate) (*chain.VerifyResult, error) {
	args := m.Called(ctx, certificateID, known)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chain.VerifyResult), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}
