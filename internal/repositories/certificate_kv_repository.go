package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"certachain/internal/models"
	"certachain/internal/storage"
)

// KVCertificateRepository keeps certificates in memory and mirrors the whole
// collection to the "issuedCertificates" key on every insert.
type KVCertificateRepository struct {
	store        storage.Store
	certificates []models.Certificate
	byID         map[string]int // first occurrence of each id
	now          Clock
	mu           sync.RWMutex
}

// NewKVCertificateRepository loads the persisted certificates from store.
// A nil clock means time.Now.
func NewKVCertificateRepository(store storage.Store, now Clock) (*KVCertificateRepository, error) {
	if now == nil {
		now = time.Now
	}

	saved, err := storage.Load(store, storage.KeyIssuedCertificates, []models.Certificate{})
	if err != nil {
		return nil, fmt.Errorf("failed to load certificates: %w", err)
	}

	r := &KVCertificateRepository{
		store:        store,
		certificates: saved,
		byID:         make(map[string]int, len(saved)),
		now:          now,
	}
	for i, c := range saved {
		if _, ok := r.byID[c.ID]; !ok {
			r.byID[c.ID] = i
		}
	}
	return r, nil
}

// GetAll returns every certificate in insertion order.
func (r *KVCertificateRepository) GetAll() ([]models.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Certificate, len(r.certificates))
	copy(all, r.certificates)
	return all, nil
}

// GetByID returns the certificate with the exact id.
func (r *KVCertificateRepository) GetByID(id string) (*models.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("certificate with ID %s: %w", id, ErrNotFound)
	}
	c := r.certificates[i]
	return &c, nil
}

// GetByHolder matches the holder name, or the holder email when one is given,
// ignoring case.
func (r *KVCertificateRepository) GetByHolder(holderName, holderEmail string) ([]models.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]models.Certificate, 0)
	for _, c := range r.certificates {
		nameMatch := strings.EqualFold(c.HolderName, holderName)
		emailMatch := holderEmail != "" && c.HolderEmail != "" && strings.EqualFold(c.HolderEmail, holderEmail)
		if nameMatch || emailMatch {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// GetByIssuer returns the certificates whose issuer name matches exactly.
func (r *KVCertificateRepository) GetByIssuer(issuerName string) ([]models.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byIssuer(issuerName), nil
}

// StatsForIssuer aggregates the certificates of one issuer. ThisMonth counts
// certificates whose issue date falls in the current calendar month.
func (r *KVCertificateRepository) StatsForIssuer(issuerName string) (models.IssuerStats, error) {
	r.mu.RLock()
	issued := r.byIssuer(issuerName)
	r.mu.RUnlock()

	now := r.now()
	holders := make(map[string]struct{}, len(issued))
	stats := models.IssuerStats{Total: len(issued)}
	for _, c := range issued {
		if day, err := c.IssuedOn(now.Location()); err == nil &&
			day.Year() == now.Year() && day.Month() == now.Month() {
			stats.ThisMonth++
		}

		holder := c.HolderEmail
		if holder == "" {
			holder = c.HolderName
		}
		holders[holder] = struct{}{}
	}
	stats.UniqueHolders = len(holders)
	return stats, nil
}

// RecentForIssuer returns up to limit certificates of one issuer, latest
// issue date first. A limit below one returns them all.
func (r *KVCertificateRepository) RecentForIssuer(issuerName string, limit int) ([]models.Certificate, error) {
	r.mu.RLock()
	issued := r.byIssuer(issuerName)
	r.mu.RUnlock()

	sort.SliceStable(issued, func(i, j int) bool {
		return issued[i].IssueDate > issued[j].IssueDate
	})
	if limit > 0 && len(issued) > limit {
		issued = issued[:limit]
	}
	return issued, nil
}

// SearchForIssuer returns the issuer's certificates whose id, holder name,
// title or course contains term, ignoring case. A blank term matches all.
func (r *KVCertificateRepository) SearchForIssuer(issuerName, term string) ([]models.Certificate, error) {
	r.mu.RLock()
	issued := r.byIssuer(issuerName)
	r.mu.RUnlock()

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return issued, nil
	}
	matches := make([]models.Certificate, 0, len(issued))
	for _, c := range issued {
		if strings.Contains(strings.ToLower(c.ID), term) ||
			strings.Contains(strings.ToLower(c.HolderName), term) ||
			strings.Contains(strings.ToLower(c.Title), term) ||
			strings.Contains(strings.ToLower(c.Course), term) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// CountIssuedInYear counts the certificates issued in year, reading issue
// dates in loc. Unparseable dates are skipped.
func CountIssuedInYear(certs []models.Certificate, year int, loc *time.Location) int {
	n := 0
	for _, c := range certs {
		if day, err := c.IssuedOn(loc); err == nil && day.Year() == year {
			n++
		}
	}
	return n
}

// Insert appends a certificate and persists the full collection.
// Duplicate ids are accepted; lookups by id keep returning the first one.
func (r *KVCertificateRepository) Insert(certificate *models.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.certificates = append(r.certificates, *certificate)
	if err := r.store.Set(storage.KeyIssuedCertificates, r.certificates); err != nil {
		r.certificates = r.certificates[:len(r.certificates)-1]
		return fmt.Errorf("failed to persist certificate %s: %w", certificate.ID, err)
	}
	if _, ok := r.byID[certificate.ID]; !ok {
		r.byID[certificate.ID] = len(r.certificates) - 1
	}
	return nil
}

// byIssuer must be called with r.mu held.
func (r *KVCertificateRepository) byIssuer(issuerName string) []models.Certificate {
	issued := make([]models.Certificate, 0)
	for _, c := range r.certificates {
		if c.IssuerName == issuerName {
			issued = append(issued, c)
		}
	}
	return issued
}
