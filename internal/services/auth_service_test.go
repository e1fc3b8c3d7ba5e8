package services_test

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"certachain/internal/models"
	"certachain/internal/repositories"
	"certachain/internal/services"
	"certachain/internal/session"
	"certachain/internal/storage"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	code := m.Run()
	os.Exit(code)
}

func registerRequest(email string) services.RegisterRequest {
	return services.RegisterRequest{
		Name:            "Alice",
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            models.RoleIssuer,
	}
}

func newKVAuthService(t *testing.T, hasher services.PasswordHasher) (*services.AuthService, *repositories.KVUserRepository, *session.Session) {
	t.Helper()
	store := storage.NewMemoryStore()
	users, err := repositories.NewKVUserRepository(store)
	require.NoError(t, err)
	sess := session.New(store)
	return services.NewAuthService(users, sess, hasher, testJWTSecret), users, sess
}

func TestAuthService_Register_WithMockRepository(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, session.New(storage.NewMemoryStore()), nil, testJWTSecret)

	// Test successful registration
	req := registerRequest("test@example.com")
	mockRepo.On("GetByEmail", req.Email).Return(nil, fmt.Errorf("user with email %s: %w", req.Email, repositories.ErrNotFound)).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.RegisteredUser")).Return(nil).Once()

	user, err := authService.Register(req)
	assert.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	mockRepo.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("GetByEmail", req.Email).Return(&models.RegisteredUser{ID: "1", Email: req.Email}, nil).Once()
	_, err = authService.Register(req)
	assert.ErrorIs(t, err, services.ErrEmailAlreadyRegistered)
	assert.Contains(t, err.Error(), "email 'test@example.com'")
	mockRepo.AssertExpectations(t)

	// Test repository failure
	mockRepo.On("GetByEmail", req.Email).Return(nil, fmt.Errorf("disk unavailable")).Once()
	_, err = authService.Register(req)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check email")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService, users, _ := newKVAuthService(t, nil)

	_, err := authService.Register(registerRequest("a@b.com"))
	require.NoError(t, err)

	_, err = authService.Register(registerRequest("a@b.com"))
	assert.ErrorIs(t, err, services.ErrEmailAlreadyRegistered)

	all, err := users.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// The uniqueness check is case-sensitive
	_, err = authService.Register(registerRequest("A@b.com"))
	assert.NoError(t, err)
	all, err = users.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAuthService_Register_Validation(t *testing.T) {
	authService, users, _ := newKVAuthService(t, nil)

	tests := []struct {
		name  string
		edit  func(*services.RegisterRequest)
		field string
	}{
		{"missing name", func(r *services.RegisterRequest) { r.Name = "   " }, "Name"},
		{"malformed email", func(r *services.RegisterRequest) { r.Email = "not-an-email" }, "Email"},
		{"short password", func(r *services.RegisterRequest) { r.Password, r.ConfirmPassword = "12345", "12345" }, "Password"},
		{"password mismatch", func(r *services.RegisterRequest) { r.ConfirmPassword = "different" }, "ConfirmPassword"},
		{"unknown role", func(r *services.RegisterRequest) { r.Role = "admin" }, "Role"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := registerRequest("v@example.com")
			tc.edit(&req)

			_, err := authService.Register(req)
			require.ErrorIs(t, err, services.ErrValidation)
			var verr *services.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	all, err := users.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAuthService_Login(t *testing.T) {
	authService, _, sess := newKVAuthService(t, nil)
	registered, err := authService.Register(registerRequest("a@b.com"))
	require.NoError(t, err)

	// Test successful login
	result, err := authService.Login(services.LoginRequest{Email: "a@b.com", Password: "password123", Role: models.RoleIssuer})
	require.NoError(t, err)
	assert.Equal(t, *registered, result.User)
	assert.NotEmpty(t, result.Token)

	current, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, *registered, current)

	claims, err := authService.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, models.RoleIssuer, claims.Role)
	assert.Equal(t, "a@b.com", claims.Email)

	// Test invalid credentials
	for _, req := range []services.LoginRequest{
		{Email: "a@b.com", Password: "wrongpassword", Role: models.RoleIssuer},
		{Email: "a@b.com", Password: "password123", Role: models.RoleVerifier},
		{Email: "A@b.com", Password: "password123", Role: models.RoleIssuer},
	} {
		_, err := authService.Login(req)
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	}

	// Test missing fields
	_, err = authService.Login(services.LoginRequest{Email: "a@b.com"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAuthService_LoginWithBCrypt(t *testing.T) {
	authService, users, _ := newKVAuthService(t, services.BCryptHasher{Cost: 4})

	_, err := authService.Register(registerRequest("a@b.com"))
	require.NoError(t, err)

	stored, err := users.GetByEmail("a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.Password)

	_, err = authService.Login(services.LoginRequest{Email: "a@b.com", Password: "password123", Role: models.RoleIssuer})
	assert.NoError(t, err)

	_, err = authService.Login(services.LoginRequest{Email: "a@b.com", Password: "password124", Role: models.RoleIssuer})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_LogoutAndCurrent(t *testing.T) {
	authService, _, _ := newKVAuthService(t, nil)

	_, err := authService.Current()
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = authService.Register(registerRequest("a@b.com"))
	require.NoError(t, err)
	_, err = authService.Login(services.LoginRequest{Email: "a@b.com", Password: "password123", Role: models.RoleIssuer})
	require.NoError(t, err)

	current, err := authService.Current()
	require.NoError(t, err)
	assert.Equal(t, "Alice", current.Name)

	require.NoError(t, authService.Logout())
	_, err = authService.Current()
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService, _, _ := newKVAuthService(t, nil)

	sign := func(secret string, claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	valid := sign(testJWTSecret, jwt.MapClaims{
		"user_id": "user-123",
		"role":    "verifier",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	claims, err := authService.ValidateToken(valid)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, models.RoleVerifier, claims.Role)

	// Test garbage token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Test wrong secret
	_, err = authService.ValidateToken(sign("other_secret", jwt.MapClaims{"user_id": "user-123", "role": "issuer"}))
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Test expired token
	expired := sign(testJWTSecret, jwt.MapClaims{
		"user_id": "user-123",
		"role":    "issuer",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	_, err = authService.ValidateToken(expired)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Test unknown role
	_, err = authService.ValidateToken(sign(testJWTSecret, jwt.MapClaims{"user_id": "user-123", "role": "admin"}))
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := services.NewPasswordHasher("")
	require.NoError(t, err)
	assert.IsType(t, services.PlaintextHasher{}, h)

	h, err = services.NewPasswordHasher(services.PasswordBCrypt)
	require.NoError(t, err)
	assert.IsType(t, services.BCryptHasher{}, h)

	_, err = services.NewPasswordHasher("md5")
	assert.Error(t, err)
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	sess := session.New(storage.NewMemoryStore())
	authService := services.NewAuthService(mockRepo, sess, nil, testJWTSecret)

	alice := models.RegisteredUser{ID: "u1", Name: "Alice", Email: "a@b.com", Password: "password123", Role: models.RoleIssuer}
	bob := models.RegisteredUser{ID: "u2", Name: "Bob", Email: "b@b.com", Password: "password123", Role: models.RoleHolder}
	mockRepo.On("GetAll").Return([]models.RegisteredUser{alice, bob}, nil)

	aliceLogin, err := authService.Login(services.LoginRequest{Email: "a@b.com", Password: "password123", Role: models.RoleIssuer})
	require.NoError(t, err)

	// Registered and signed in
	mockRepo.On("GetByID", "u1").Return(&alice, nil).Once()
	claims, err := authService.Authenticate(aliceLogin.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleIssuer, claims.Role)

	// No longer registered
	mockRepo.On("GetByID", "u1").Return(nil, fmt.Errorf("user with ID u1: %w", repositories.ErrNotFound)).Once()
	_, err = authService.Authenticate(aliceLogin.Token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	// Registry unavailable
	mockRepo.On("GetByID", "u1").Return(nil, fmt.Errorf("disk unavailable")).Once()
	_, err = authService.Authenticate(aliceLogin.Token)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrUnauthenticated)

	// Another identity took over the session; the registry is not consulted
	_, err = authService.Login(services.LoginRequest{Email: "b@b.com", Password: "password123", Role: models.RoleHolder})
	require.NoError(t, err)
	_, err = authService.Authenticate(aliceLogin.Token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = authService.Authenticate("not-a-token")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
	mockRepo.AssertExpectations(t)
}
