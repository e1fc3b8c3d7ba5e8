package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"certachain/internal/models"
	"certachain/internal/repositories"
	"certachain/internal/session"

	"github.com/go-playground/validator/v10"
)

// DefaultIssuerName is used when certificates are issued without an active identity.
const DefaultIssuerName = "Demo Institute"

// recentLimit is how many certificates the issuer dashboard lists.
const recentLimit = 5

// IssueRequest is the certificate issuance form.
type IssueRequest struct {
	HolderName  string `json:"holderName" validate:"required"`
	HolderEmail string `json:"holderEmail" validate:"omitempty,email"`
	Title       string `json:"title" validate:"required"`
	Course      string `json:"course" validate:"required"`
	IssueDate   string `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
	FileName    string `json:"fileName" validate:"omitempty,max=255"`
}

// IssuedCertificate is a certificate accepted by the chain and stored.
type IssuedCertificate struct {
	Certificate     models.Certificate `json:"certificate"`
	TransactionHash string             `json:"transactionHash"`
}

// IssuerDashboard is the overview shown to an issuer.
type IssuerDashboard struct {
	IssuerName string               `json:"issuerName"`
	Stats      models.IssuerStats   `json:"stats"`
	Recent     []models.Certificate `json:"recent"`
}

// CertificateService handles business logic for issuing and listing certificates.
type CertificateService struct {
	repo      repositories.CertificateRepository
	chain     Chain
	session   *session.Session
	publisher EventPublisher
	validate  *validator.Validate
	newID     func() string
	now       repositories.Clock
}

// NewCertificateService creates a new CertificateService. publisher may be nil.
func NewCertificateService(repo repositories.CertificateRepository, chainSvc Chain, sess *session.Session, publisher EventPublisher) *CertificateService {
	return &CertificateService{
		repo:      repo,
		chain:     chainSvc,
		session:   sess,
		publisher: publisher,
		validate:  validator.New(),
		newID:     GenerateCertificateID,
		now:       time.Now,
	}
}

// WithClock sets the clock used for the default issue date.
func (s *CertificateService) WithClock(now repositories.Clock) *CertificateService {
	s.now = now
	return s
}

// WithIDGenerator sets the certificate id generator.
func (s *CertificateService) WithIDGenerator(newID func() string) *CertificateService {
	s.newID = newID
	return s
}

// Issue validates the form, submits the certificate to the chain and stores
// it once the chain accepts it. Nothing is stored when the chain fails.
func (s *CertificateService) Issue(ctx context.Context, req IssueRequest) (*IssuedCertificate, error) {
	req.HolderName = strings.TrimSpace(req.HolderName)
	req.HolderEmail = strings.TrimSpace(req.HolderEmail)
	req.Title = strings.TrimSpace(req.Title)
	req.Course = strings.TrimSpace(req.Course)
	req.IssueDate = strings.TrimSpace(req.IssueDate)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.IssueDate == "" {
		req.IssueDate = s.now().Format(models.IssueDateLayout)
	}

	certificate := models.Certificate{
		ID:          s.newID(),
		HolderName:  req.HolderName,
		HolderEmail: req.HolderEmail,
		Title:       req.Title,
		Course:      req.Course,
		IssueDate:   req.IssueDate,
		IssuerName:  s.issuerName(),
		FileName:    req.FileName,
	}

	receipt, err := s.chain.Issue(ctx, certificate)
	if err != nil {
		log.Printf("Chain rejected certificate %s: %v", certificate.ID, err)
		return nil, fmt.Errorf("failed to issue certificate %s: %w", certificate.ID, err)
	}

	if err := s.repo.Insert(&certificate); err != nil {
		return nil, fmt.Errorf("failed to store certificate %s: %w", certificate.ID, err)
	}

	publishEvent(s.publisher, CertificateEvent{
		Type:            EventCertificateIssued,
		CertificateID:   certificate.ID,
		IssuerName:      certificate.IssuerName,
		TransactionHash: receipt.TransactionHash,
		OccurredAt:      s.now(),
	})
	return &IssuedCertificate{Certificate: certificate, TransactionHash: receipt.TransactionHash}, nil
}

// GetCertificateByID retrieves a single certificate by its ID.
func (s *CertificateService) GetCertificateByID(id string) (*models.Certificate, error) {
	return s.repo.GetByID(id)
}

// Dashboard returns the active issuer's statistics and most recent certificates.
func (s *CertificateService) Dashboard() (*IssuerDashboard, error) {
	issuerName := s.issuerName()

	stats, err := s.repo.StatsForIssuer(issuerName)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats for %s: %w", issuerName, err)
	}
	recent, err := s.repo.RecentForIssuer(issuerName, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates of %s: %w", issuerName, err)
	}
	return &IssuerDashboard{IssuerName: issuerName, Stats: stats, Recent: recent}, nil
}

// ListIssued returns the active issuer's certificates. A non-empty term keeps
// those whose id, holder name, title or course contains it, ignoring case.
func (s *CertificateService) ListIssued(term string) ([]models.Certificate, error) {
	return s.repo.SearchForIssuer(s.issuerName(), term)
}

func (s *CertificateService) issuerName() string {
	if user, ok := s.session.Current(); ok && user.Name != "" {
		return user.Name
	}
	return DefaultIssuerName
}
