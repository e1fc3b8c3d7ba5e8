package services

import (
	"context"

	"certachain/internal/chain"
	"certachain/internal/models"
)

// Chain is the ledger certificates are issued to and verified against.
// *chain.Service implements it.
type Chain interface {
	Issue(ctx context.Context, certificate models.Certificate) (*chain.IssueReceipt, error)
	Verify(ctx context.Context, certificateID string, known []models.Certificate) (*chain.VerifyResult, error)
}
