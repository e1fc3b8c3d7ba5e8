package services

import (
	"time"

	"certachain/internal/models"
	"certachain/internal/repositories"
	"certachain/internal/session"
)

// HolderOverview lists the certificates of the active holder.
type HolderOverview struct {
	Certificates   []models.Certificate `json:"certificates"`
	Total          int                  `json:"total"`
	IssuedThisYear int                  `json:"issuedThisYear"`
	UniqueIssuers  int                  `json:"uniqueIssuers"`
}

// HolderService serves the holder's view of the certificates.
type HolderService struct {
	repo    repositories.CertificateRepository
	session *session.Session
	now     repositories.Clock
}

// NewHolderService creates a new HolderService.
func NewHolderService(repo repositories.CertificateRepository, sess *session.Session) *HolderService {
	return &HolderService{
		repo:    repo,
		session: sess,
		now:     time.Now,
	}
}

// WithClock sets the clock used to decide the current year.
func (s *HolderService) WithClock(now repositories.Clock) *HolderService {
	s.now = now
	return s
}

// MyCertificates returns the certificates held by the active identity,
// matched by name or email.
func (s *HolderService) MyCertificates() (*HolderOverview, error) {
	user, ok := s.session.Current()
	if !ok {
		return nil, ErrUnauthenticated
	}

	certs, err := s.repo.GetByHolder(user.Name, user.Email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	issuers := make(map[string]struct{}, len(certs))
	for _, c := range certs {
		issuers[c.IssuerName] = struct{}{}
	}
	return &HolderOverview{
		Certificates:   certs,
		Total:          len(certs),
		IssuedThisYear: repositories.CountIssuedInYear(certs, now.Year(), now.Location()),
		UniqueIssuers:  len(issuers),
	}, nil
}
