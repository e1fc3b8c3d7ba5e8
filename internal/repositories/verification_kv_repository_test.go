package repositories_test

import (
	"testing"

	"certachain/internal/models"
	"certachain/internal/repositories"
	"certachain/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, store storage.Store) *repositories.KVVerificationRepository {
	t.Helper()
	ledger, err := repositories.NewKVVerificationRepository(store)
	require.NoError(t, err)
	return ledger
}

func TestKVVerificationRepository_HistoryFor(t *testing.T) {
	ledger := newLedger(t, storage.NewMemoryStore())
	records := []models.VerificationRecord{
		{ID: "r1", CertificateID: "CERT-1", Status: models.StatusValid, Timestamp: 100, VerifierEmail: "v@example.com"},
		{ID: "r2", CertificateID: "CERT-2", Status: models.StatusInvalid, Timestamp: 300, VerifierEmail: "v@example.com"},
		{ID: "r3", CertificateID: "CERT-3", Status: models.StatusValid, Timestamp: 200, VerifierEmail: "other@example.com"},
		{ID: "r4", CertificateID: "CERT-4", Status: models.StatusValid, Timestamp: 300, VerifierEmail: "v@example.com"},
		{ID: "r5", CertificateID: "CERT-5", Status: models.StatusValid, Timestamp: 50, VerifierEmail: "V@example.com"},
	}
	for i := range records {
		require.NoError(t, ledger.Append(&records[i]))
	}

	history, err := ledger.HistoryFor("v@example.com")
	require.NoError(t, err)
	ids := make([]string, 0, len(history))
	for i, rec := range history {
		ids = append(ids, rec.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, history[i-1].Timestamp, rec.Timestamp)
		}
	}
	assert.Equal(t, []string{"r2", "r4", "r1"}, ids)

	again, err := ledger.HistoryFor("v@example.com")
	require.NoError(t, err)
	assert.Equal(t, history, again)

	none, err := ledger.HistoryFor("nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestKVVerificationRepository_SummaryFor(t *testing.T) {
	ledger := newLedger(t, storage.NewMemoryStore())
	for i, status := range []models.VerificationStatus{models.StatusValid, models.StatusInvalid, models.StatusValid} {
		rec := models.VerificationRecord{ID: string(rune('a' + i)), Status: status, VerifierEmail: "v@example.com"}
		require.NoError(t, ledger.Append(&rec))
	}

	summary, err := ledger.SummaryFor("v@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationSummary{Total: 3, Valid: 2, Invalid: 1}, summary)
}

func TestKVVerificationRepository_PersistsAndReloads(t *testing.T) {
	store := storage.NewMemoryStore()
	ledger := newLedger(t, store)

	rec := models.VerificationRecord{ID: "r1", CertificateID: "CERT-NOTEXIST", Status: models.StatusInvalid, Timestamp: 1, VerifierEmail: "v@example.com"}
	require.NoError(t, ledger.Append(&rec))

	reloaded := newLedger(t, store)
	all, err := reloaded.GetAll()
	require.NoError(t, err)
	assert.Equal(t, []models.VerificationRecord{rec}, all)
}

func TestKVVerificationRepository_AppendRollsBackOnPersistFailure(t *testing.T) {
	store := newFailingStore()
	ledger := newLedger(t, store)

	store.fail = true
	err := ledger.Append(&models.VerificationRecord{ID: "r1", VerifierEmail: "v@example.com"})
	assert.ErrorIs(t, err, errDiskFull)

	all, err := ledger.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}
