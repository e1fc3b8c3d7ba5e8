package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"certachain/internal/models"
	"certachain/internal/repositories"
	"certachain/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
)

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Name            string      `json:"name" validate:"required"`
	Email           string      `json:"email" validate:"required,email"`
	Password        string      `json:"password" validate:"required,min=6"`
	ConfirmPassword string      `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            models.Role `json:"role" validate:"required,oneof=issuer holder verifier"`
}

// LoginRequest is the login form. The role must match the registered one.
type LoginRequest struct {
	Email    string      `json:"email" validate:"required"`
	Password string      `json:"password" validate:"required"`
	Role     models.Role `json:"role" validate:"required,oneof=issuer holder verifier"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// TokenClaims are the identity fields carried by an access token.
type TokenClaims struct {
	UserID string
	Name   string
	Email  string
	Role   models.Role
}

// AuthService handles registration, login and the active session.
type AuthService struct {
	userRepo   repositories.UserRepository
	session    *session.Session
	hasher     PasswordHasher
	validate   *validator.Validate
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	mu         sync.Mutex    // serialises the email check with the insert
}

// NewAuthService creates a new AuthService. A nil hasher stores plaintext passwords.
func NewAuthService(userRepo repositories.UserRepository, sess *session.Session, hasher PasswordHasher, jwtSecret string) *AuthService {
	if hasher == nil {
		hasher = PlaintextHasher{}
	}
	return &AuthService{
		userRepo:   userRepo,
		session:    sess,
		hasher:     hasher,
		validate:   validator.New(),
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
	}
}

// Register adds a user. The email must not already be registered; the
// comparison is case-sensitive.
func (s *AuthService) Register(req RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.userRepo.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s': %w", req.Email, ErrEmailAlreadyRegistered)
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	stored, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.RegisteredUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: stored,
		Role:     req.Role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Printf("Registered %s user %s", user.Role, user.Email)
	identity := user.Identity()
	return &identity, nil
}

// Login looks for a registered user matching email, password and role,
// makes it the active identity and returns an access token.
func (s *AuthService) Login(req LoginRequest) (*LoginResult, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	var match *models.RegisteredUser
	for i := range users {
		u := &users[i]
		if u.Email == req.Email && u.Role == req.Role && s.hasher.Matches(u.Password, req.Password) {
			match = u
			break
		}
	}
	if match == nil {
		return nil, ErrInvalidCredentials
	}

	identity := match.Identity()
	if err := s.session.Start(identity); err != nil {
		return nil, err
	}

	token, err := s.issueToken(identity)
	if err != nil {
		return nil, err
	}
	log.Printf("User %s logged in as %s", identity.Email, identity.Role)
	return &LoginResult{User: identity, Token: token}, nil
}

// Logout ends the active session.
func (s *AuthService) Logout() error {
	return s.session.Clear()
}

// Current returns the active identity or ErrUnauthenticated.
func (s *AuthService) Current() (models.User, error) {
	user, ok := s.session.Current()
	if !ok {
		return models.User{}, ErrUnauthenticated
	}
	return user, nil
}

func (s *AuthService) issueToken(user models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Authenticate accepts a token only while it belongs to the active session
// and its user is still registered.
func (s *AuthService) Authenticate(tokenString string) (*TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	current, ok := s.session.Current()
	if !ok || current.ID != claims.UserID {
		return nil, ErrUnauthenticated
	}
	if _, err := s.userRepo.GetByID(claims.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", claims.UserID, ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to look up user %s: %w", claims.UserID, err)
	}
	return claims, nil
}

// ValidateToken parses and validates an access token.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || !models.Role(role).Valid() {
		return nil, ErrInvalidToken
	}
	return &TokenClaims{
		UserID: userID,
		Name:   name,
		Email:  email,
		Role:   models.Role(role),
	}, nil
}
