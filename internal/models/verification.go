package models

// VerificationStatus is the outcome recorded for a verification attempt.
type VerificationStatus string

const (
	StatusValid   VerificationStatus = "Valid"
	StatusInvalid VerificationStatus = "Invalid"
)

// VerificationRecord is one entry of the verification ledger.
// CertificateID may reference a certificate that does not exist.
type VerificationRecord struct {
	ID            string             `json:"id"`
	CertificateID string             `json:"certificateId"`
	Status        VerificationStatus `json:"status"`
	Timestamp     int64              `json:"timestamp"` // epoch millis
	VerifierEmail string             `json:"verifierEmail"`
}

// VerificationSummary counts a verifier's history by outcome.
type VerificationSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}
