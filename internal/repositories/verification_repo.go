package repositories

import "certachain/internal/models"

// VerificationRepository is the append-only ledger of verification attempts.
type VerificationRepository interface {
	GetAll() ([]models.VerificationRecord, error)
	HistoryFor(verifierEmail string) ([]models.VerificationRecord, error)
	SummaryFor(verifierEmail string) (models.VerificationSummary, error)
	Append(record *models.VerificationRecord) error
}
