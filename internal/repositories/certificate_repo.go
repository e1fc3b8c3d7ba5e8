package repositories

import "certachain/internal/models"

// CertificateRepository defines the interface for certificate data access.
// Certificates are append-only: there is no update or delete.
type CertificateRepository interface {
	GetAll() ([]models.Certificate, error)
	GetByID(id string) (*models.Certificate, error)
	GetByHolder(holderName, holderEmail string) ([]models.Certificate, error)
	GetByIssuer(issuerName string) ([]models.Certificate, error)
	StatsForIssuer(issuerName string) (models.IssuerStats, error)
	RecentForIssuer(issuerName string, limit int) ([]models.Certificate, error)
	SearchForIssuer(issuerName, term string) ([]models.Certificate, error)
	Insert(certificate *models.Certificate) error
}
