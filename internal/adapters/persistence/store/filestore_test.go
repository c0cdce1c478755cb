package store

import (
	"os"
	"path/filepath"
	"testing"

	"asser-platform/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	require.NoError(t, err)
	return st, dir
}

func TestFileStoreEmptyDefaults(t *testing.T) {
	st, _ := newTestStore(t)

	accounts, err := st.LoadAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	deposits, err := st.LoadDeposits()
	require.NoError(t, err)
	assert.Empty(t, deposits)

	approvals, err := st.LoadApprovals()
	require.NoError(t, err)
	assert.Empty(t, approvals)
}

func TestFileStoreAccountsRoundTrip(t *testing.T) {
	st, _ := newTestStore(t)

	accounts := map[string]*domain.Account{
		"u1": {
			ID:    "u1",
			Name:  "Amr",
			Email: "amr@example.com",
			Balances: map[domain.Currency]float64{
				domain.CurrencyEGP:  120.5,
				domain.CurrencyUSDT: 3,
			},
			Certificates: []*domain.Certificate{
				{PlanKind: domain.PlanDaily, Principal: 1000, JoinedAt: 1700000000, DurationDays: 40, LastPayout: 1700000000},
			},
		},
	}
	require.NoError(t, st.SaveAccounts(accounts))

	loaded, err := st.LoadAccounts()
	require.NoError(t, err)
	require.Contains(t, loaded, "u1")
	assert.Equal(t, "Amr", loaded["u1"].Name)
	assert.Equal(t, 120.5, loaded["u1"].Balance(domain.CurrencyEGP))
	require.Len(t, loaded["u1"].Certificates, 1)
	assert.Equal(t, domain.PlanDaily, loaded["u1"].Certificates[0].PlanKind)
}

func TestFileStoreQuarantinesCorruptDocument(t *testing.T) {
	st, dir := newTestStore(t)

	path := filepath.Join(dir, DocAccounts+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	accounts, err := st.LoadAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	// The bad snapshot is renamed aside, not deleted.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	aside, err := filepath.Glob(path + ".quarantine.*")
	require.NoError(t, err)
	assert.Len(t, aside, 1)
}

func TestFileStoreTypeMismatchYieldsEmptyDefault(t *testing.T) {
	st, dir := newTestStore(t)

	// Valid JSON whose second entry fails mid-decode: the first entry must
	// not survive into the loaded table.
	body := `{
		"a": {"uid": "a", "name": "A", "balance": {"EGP": 100}},
		"b": {"uid": "b", "banned": "notabool"}
	}`
	path := filepath.Join(dir, DocAccounts+".json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	accounts, err := st.LoadAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)

	aside, err := filepath.Glob(path + ".quarantine.*")
	require.NoError(t, err)
	assert.Len(t, aside, 1)
}

func TestFileStoreBanLogAppends(t *testing.T) {
	st, _ := newTestStore(t)

	require.NoError(t, st.AppendBanRecord(&domain.BanRecord{OwnerID: "u1", Reason: "fraud", Time: 10}))
	require.NoError(t, st.AppendBanRecord(&domain.BanRecord{OwnerID: "u2", Reason: "abuse", Time: 20}))

	records, err := st.LoadBanLog()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "u1", records[0].OwnerID)
	assert.Equal(t, "u2", records[1].OwnerID)
}

func TestFileStoreQueuesRoundTrip(t *testing.T) {
	st, _ := newTestStore(t)

	require.NoError(t, st.SaveDeposits([]*domain.DepositRequest{
		{ID: "d1", OwnerID: "u1", Currency: domain.CurrencyEGP, Amount: 500, Status: domain.StatusPending},
	}))
	require.NoError(t, st.SaveWithdrawals([]*domain.WithdrawalRequest{
		{ID: "w1", OwnerID: "u1", Currency: domain.CurrencyEGP, Net: 490, Fee: 10, Status: domain.StatusPending},
	}))

	deposits, err := st.LoadDeposits()
	require.NoError(t, err)
	require.Len(t, deposits, 1)
	assert.Equal(t, "d1", deposits[0].ID)

	withdrawals, err := st.LoadWithdrawals()
	require.NoError(t, err)
	require.Len(t, withdrawals, 1)
	assert.Equal(t, 500.0, withdrawals[0].Gross())
}

func TestFileStoreApprovalsRoundTrip(t *testing.T) {
	st, _ := newTestStore(t)

	require.NoError(t, st.SaveApprovals(map[string]bool{"u9": true}))
	approvals, err := st.LoadApprovals()
	require.NoError(t, err)
	assert.True(t, approvals["u9"])
}

func TestFileStoreSaveLeavesNoTempFile(t *testing.T) {
	st, dir := newTestStore(t)

	require.NoError(t, st.SaveAccounts(map[string]*domain.Account{"u1": {ID: "u1"}}))
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
