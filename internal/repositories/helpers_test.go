package repositories_test

import (
	"errors"

	"certachain/internal/storage"
)

var errDiskFull = errors.New("disk full")

// failingStore rejects every write once armed.
type failingStore struct {
	*storage.MemoryStore
	fail bool
}

func newFailingStore() *failingStore {
	return &failingStore{MemoryStore: storage.NewMemoryStore()}
}

func (s *failingStore) Set(key string, value any) error {
	if s.fail {
		return errDiskFull
	}
	return s.MemoryStore.Set(key, value)
}
