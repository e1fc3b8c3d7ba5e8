package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password storage modes.
const (
	PasswordPlaintext = "plaintext"
	PasswordBCrypt    = "bcrypt"
)

// PasswordHasher turns a password into its stored form and checks candidates against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, candidate string) bool
}

// PlaintextHasher stores passwords as given and compares them verbatim.
type PlaintextHasher struct{}

func (PlaintextHasher) Hash(password string) (string, error) { return password, nil }

func (PlaintextHasher) Matches(stored, candidate string) bool { return stored == candidate }

// BCryptHasher stores bcrypt hashes.
type BCryptHasher struct {
	Cost int
}

func (h BCryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (BCryptHasher) Matches(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}

// NewPasswordHasher returns the hasher for a configured mode.
func NewPasswordHasher(mode string) (PasswordHasher, error) {
	switch mode {
	case "", PasswordPlaintext:
		return PlaintextHasher{}, nil
	case PasswordBCrypt:
		return BCryptHasher{}, nil
	}
	return nil, fmt.Errorf("unknown password hashing mode %q", mode)
}
