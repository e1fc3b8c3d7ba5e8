// Package storage provides the persistent key-value store every other
// component keeps its state in. Values are stored JSON-encoded under
// string keys.
package storage

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Get when no value is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// Keys of the persisted state.
const (
	KeyAuthUser            = "authUser"
	KeyRegisteredUsers     = "registeredUsers"
	KeyIssuedCertificates  = "issuedCertificates"
	KeyVerificationHistory = "verificationHistory"
	KeyDarkMode            = "isDarkMode"
)

// Store is a string-keyed store of JSON values.
type Store interface {
	// Get decodes the value stored under key into dst.
	Get(key string, dst any) error
	// Set replaces the value stored under key.
	Set(key string, value any) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
	// Keys lists every stored key in lexical order.
	Keys() ([]string, error)
}

// Load reads key into a value of type T, returning def when the key is absent.
func Load[T any](s Store, key string, def T) (T, error) {
	var v T
	if err := s.Get(key, &v); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return def, nil
		}
		return def, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return v, nil
}
