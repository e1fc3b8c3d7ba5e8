package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"certachain/internal/chain"
	"certachain/internal/models"
	"certachain/internal/repositories"
	"certachain/internal/session"

	"github.com/google/uuid"
)

// UnknownVerifierEmail is recorded when a verification runs without an active identity.
const UnknownVerifierEmail = "unknown@verifier.com"

// VerificationOutcome is the chain's answer and the ledger entry recording it.
type VerificationOutcome struct {
	Result *chain.VerifyResult       `json:"result"`
	Record models.VerificationRecord `json:"record"`
}

// VerificationService checks certificates and keeps the verification ledger.
type VerificationService struct {
	certRepo  repositories.CertificateRepository
	ledger    repositories.VerificationRepository
	chain     Chain
	session   *session.Session
	publisher EventPublisher
	now       repositories.Clock
}

// NewVerificationService creates a new VerificationService. publisher may be nil.
func NewVerificationService(certRepo repositories.CertificateRepository, ledger repositories.VerificationRepository, chainSvc Chain, sess *session.Session, publisher EventPublisher) *VerificationService {
	return &VerificationService{
		certRepo:  certRepo,
		ledger:    ledger,
		chain:     chainSvc,
		session:   sess,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock sets the clock used to timestamp records.
func (s *VerificationService) WithClock(now repositories.Clock) *VerificationService {
	s.now = now
	return s
}

// Verify asks the chain whether certificateID exists and records the attempt.
// An unknown id is a valid negative result and is recorded as Invalid.
// The record is credited to the identity active when the call starts.
func (s *VerificationService) Verify(ctx context.Context, certificateID string) (*VerificationOutcome, error) {
	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return nil, requiredField("CertificateID")
	}
	verifier := s.verifierEmail()

	known, err := s.certRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load certificates: %w", err)
	}
	result, err := s.chain.Verify(ctx, certificateID, known)
	if err != nil {
		return nil, fmt.Errorf("failed to verify certificate %s: %w", certificateID, err)
	}

	status := models.StatusInvalid
	if result.Valid {
		status = models.StatusValid
	}
	record := models.VerificationRecord{
		ID:            uuid.New().String(),
		CertificateID: certificateID,
		Status:        status,
		Timestamp:     s.now().UnixMilli(),
		VerifierEmail: verifier,
	}
	if err := s.ledger.Append(&record); err != nil {
		return nil, fmt.Errorf("failed to record verification of %s: %w", certificateID, err)
	}
	log.Printf("Verification of %s by %s: %s", certificateID, record.VerifierEmail, status)

	publishEvent(s.publisher, CertificateEvent{
		Type:          EventCertificateVerified,
		CertificateID: certificateID,
		Status:        string(status),
		VerifierEmail: record.VerifierEmail,
		OccurredAt:    time.UnixMilli(record.Timestamp),
	})
	return &VerificationOutcome{Result: result, Record: record}, nil
}

// History returns the active verifier's records, most recent first.
func (s *VerificationService) History() ([]models.VerificationRecord, error) {
	user, ok := s.session.Current()
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s.ledger.HistoryFor(user.Email)
}

// Summary counts the active verifier's records by status.
func (s *VerificationService) Summary() (models.VerificationSummary, error) {
	user, ok := s.session.Current()
	if !ok {
		return models.VerificationSummary{}, ErrUnauthenticated
	}
	return s.ledger.SummaryFor(user.Email)
}

func (s *VerificationService) verifierEmail() string {
	if user, ok := s.session.Current(); ok && user.Email != "" {
		return user.Email
	}
	return UnknownVerifierEmail
}
