package services

import (
	"testing"
	"time"

	"asser-platform/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

// seedCertificate opens a certificate with a back-dated join timestamp.
func seedCertificate(t *testing.T, env *testEnv, id string, kind domain.PlanKind, principal float64, joinedAt int64) {
	t.Helper()
	err := env.ledger.update(func(accounts map[string]*domain.Account) error {
		acc := accounts[id]
		require.NotNil(t, acc)
		plan, ok := domain.PlanFor(kind)
		require.True(t, ok)
		acc.Certificates = append(acc.Certificates, &domain.Certificate{
			PlanKind:     kind,
			Principal:    principal,
			JoinedAt:     joinedAt,
			DurationDays: plan.DurationDays,
			LastPayout:   joinedAt,
		})
		return nil
	})
	require.NoError(t, err)
}

func TestAccrualCreditsWholeIntervalsOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	now := time.Now()
	// 65 days on a monthly plan is exactly 2 payout intervals.
	joined := now.Add(-65 * day).Unix()
	seedCertificate(t, env, "u1", domain.PlanMonthly, 1000, joined)
	env.accrual.now = func() time.Time { return now }

	env.accrual.RunAll()

	acc, err := env.ledger.GetAccount("u1")
	require.NoError(t, err)
	assert.InDelta(t, 200.0, acc.Balance(domain.BaseCurrency), 1e-9)

	// Last payout advanced by whole intervals, keeping the 5 leftover days.
	wantLast := joined + 2*int64((30*day).Seconds())
	assert.Equal(t, wantLast, acc.Certificates[0].LastPayout)
	assert.Equal(t, now.Add(-5*day).Unix(), acc.Certificates[0].LastPayout)
}

func TestAccrualIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	now := time.Now()
	seedCertificate(t, env, "u1", domain.PlanDaily, 1000, now.Add(-3*day).Unix())
	env.accrual.now = func() time.Time { return now }

	env.accrual.RunAll()
	acc, _ := env.ledger.GetAccount("u1")
	first := acc.Balance(domain.BaseCurrency)
	assert.InDelta(t, 3*1000*0.001667, first, 1e-9)

	env.accrual.RunAll()
	acc, _ = env.ledger.GetAccount("u1")
	assert.Equal(t, first, acc.Balance(domain.BaseCurrency))
}

func TestAccrualSkipsPartialInterval(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	now := time.Now()
	seedCertificate(t, env, "u1", domain.PlanWeekly, 500, now.Add(-6*day).Unix())
	env.accrual.now = func() time.Time { return now }

	env.accrual.RunAll()

	acc, _ := env.ledger.GetAccount("u1")
	assert.Zero(t, acc.Balance(domain.BaseCurrency))
	assert.Empty(t, env.notifier.received("u1"))
}

func TestAccrualSkipsBannedAccounts(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	now := time.Now()
	joined := now.Add(-10 * day).Unix()
	seedCertificate(t, env, "u1", domain.PlanDaily, 1000, joined)
	require.NoError(t, env.ledger.Ban("u1", "fraud", "admin-1"))
	env.accrual.now = func() time.Time { return now }

	env.accrual.RunAll()

	acc, _ := env.ledger.GetAccount("u1")
	assert.Zero(t, acc.Balance(domain.BaseCurrency))
	assert.Equal(t, joined, acc.Certificates[0].LastPayout)
}

func TestAccrualNotifiesCreditedAccounts(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	now := time.Now()
	seedCertificate(t, env, "u1", domain.PlanDaily, 1000, now.Add(-2*day).Unix())
	env.accrual.now = func() time.Time { return now }

	env.accrual.RunAll()

	require.Len(t, env.notifier.received("u1"), 1)
	assert.Contains(t, env.notifier.received("u1")[0], "Profit credited")
}

func TestAccrueCertificateUnknownPlanIsNoop(t *testing.T) {
	cert := &domain.Certificate{PlanKind: "quarterly", Principal: 100, JoinedAt: 1, LastPayout: 1}
	assert.Zero(t, accrueCertificate(cert, time.Now().Unix()))
	assert.Equal(t, int64(1), cert.LastPayout)
}
