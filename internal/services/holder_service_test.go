package services_test

import (
	"testing"

	"certachain/internal/models"
	"certachain/internal/repositories"
	"certachain/internal/services"
	"certachain/internal/session"
	"certachain/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderService_MyCertificates(t *testing.T) {
	store := storage.NewMemoryStore()
	repo, err := repositories.NewKVCertificateRepository(store, nil)
	require.NoError(t, err)
	sess := session.New(store)
	svc := services.NewHolderService(repo, sess).WithClock(fixedNow)

	_, err = svc.MyCertificates()
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	certs := []models.Certificate{
		{ID: "CERT-1", HolderName: "john doe", IssueDate: "2024-01-05", IssuerName: "Acme"},
		{ID: "CERT-2", HolderName: "J. Doe", HolderEmail: "JOHN@example.com", IssueDate: "2023-06-01", IssuerName: "Globex"},
		{ID: "CERT-3", HolderName: "Jane Roe", IssueDate: "2024-02-02", IssuerName: "Initech"},
		{ID: "CERT-4", HolderName: "John Doe", IssueDate: "2024-03-01", IssuerName: "Acme"},
	}
	for i := range certs {
		require.NoError(t, repo.Insert(&certs[i]))
	}
	require.NoError(t, sess.Start(models.User{ID: "h1", Name: "John Doe", Email: "john@example.com", Role: models.RoleHolder}))

	overview, err := svc.MyCertificates()
	require.NoError(t, err)
	assert.Equal(t, 3, overview.Total)
	assert.Equal(t, 2, overview.IssuedThisYear)
	assert.Equal(t, 2, overview.UniqueIssuers)
	assert.Equal(t, "CERT-1", overview.Certificates[0].ID)
	assert.Equal(t, "CERT-2", overview.Certificates[1].ID)
	assert.Equal(t, "CERT-4", overview.Certificates[2].ID)
}
