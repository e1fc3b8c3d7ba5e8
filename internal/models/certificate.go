package models

import "time"

// IssueDateLayout is the calendar date format of Certificate.IssueDate.
const IssueDateLayout = "2006-01-02"

// Certificate is an issued credential. Certificates are append-only:
// once stored they are never updated or deleted.
type Certificate struct {
	ID          string `json:"id"`
	HolderName  string `json:"holderName"`
	HolderEmail string `json:"holderEmail,omitempty"`
	Title       string `json:"title"`
	Course      string `json:"course"`
	IssueDate   string `json:"issueDate"` // YYYY-MM-DD
	IssuerName  string `json:"issuerName"`
	FileName    string `json:"fileName,omitempty"` // metadata only, no file content is kept
}

// IssuedOn parses IssueDate in the given location.
func (c Certificate) IssuedOn(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(IssueDateLayout, c.IssueDate, loc)
}

// IssuerStats summarises the certificates of one issuer.
type IssuerStats struct {
	Total         int `json:"total"`
	ThisMonth     int `json:"thisMonth"`
	UniqueHolders int `json:"uniqueHolders"`
}
