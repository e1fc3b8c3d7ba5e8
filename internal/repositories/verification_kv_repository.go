package repositories

import (
	"fmt"
	"sort"
	"sync"

	"certachain/internal/models"
	"certachain/internal/storage"
)

// KVVerificationRepository keeps the ledger in memory and mirrors it to the
// "verificationHistory" key on every append.
type KVVerificationRepository struct {
	store   storage.Store
	records []models.VerificationRecord
	mu      sync.RWMutex
}

// NewKVVerificationRepository loads the persisted ledger from store.
func NewKVVerificationRepository(store storage.Store) (*KVVerificationRepository, error) {
	saved, err := storage.Load(store, storage.KeyVerificationHistory, []models.VerificationRecord{})
	if err != nil {
		return nil, fmt.Errorf("failed to load verification history: %w", err)
	}
	return &KVVerificationRepository{
		store:   store,
		records: saved,
	}, nil
}

// GetAll returns every record in append order.
func (r *KVVerificationRepository) GetAll() ([]models.VerificationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.VerificationRecord, len(r.records))
	copy(all, r.records)
	return all, nil
}

// HistoryFor returns the records of one verifier, most recent first.
// Records with equal timestamps keep their append order.
func (r *KVVerificationRepository) HistoryFor(verifierEmail string) ([]models.VerificationRecord, error) {
	r.mu.RLock()
	history := make([]models.VerificationRecord, 0)
	for _, rec := range r.records {
		if rec.VerifierEmail == verifierEmail {
			history = append(history, rec)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp > history[j].Timestamp
	})
	return history, nil
}

// SummaryFor counts the records of one verifier by status.
func (r *KVVerificationRepository) SummaryFor(verifierEmail string) (models.VerificationSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var summary models.VerificationSummary
	for _, rec := range r.records {
		if rec.VerifierEmail != verifierEmail {
			continue
		}
		summary.Total++
		switch rec.Status {
		case models.StatusValid:
			summary.Valid++
		case models.StatusInvalid:
			summary.Invalid++
		}
	}
	return summary, nil
}

// Append adds a record and persists the full ledger.
func (r *KVVerificationRepository) Append(record *models.VerificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, *record)
	if err := r.store.Set(storage.KeyVerificationHistory, r.records); err != nil {
		r.records = r.records[:len(r.records)-1]
		return fmt.Errorf("failed to persist verification record %s: %w", record.ID, err)
	}
	return nil
}
