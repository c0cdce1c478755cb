package services

import (
	"fmt"
	"log"
	"time"

	"asser-platform/internal/core/domain"
)

// AccrualService converts elapsed wall-clock time into certificate profit.
// It has no scheduler: it runs whenever a flow entry point invokes it, and
// advancing last-payout by whole intervals (never resetting to now) makes a
// second immediate run a no-op.
type AccrualService struct {
	ledger   *LedgerService
	notifier Notifier
	now      func() time.Time
}

// NewAccrualService creates a new accrual service
func NewAccrualService(ledger *LedgerService, notifier Notifier) *AccrualService {
	return &AccrualService{ledger: ledger, notifier: notifier, now: time.Now}
}

// accountAccrual is the per-account outcome of one run.
type accountAccrual struct {
	profit     float64
	newBalance float64
	nextPayout int64
	planLabel  string
}

// RunAll applies due payouts to every certificate of every non-banned
// account, then sends one summary notification per credited account.
func (s *AccrualService) RunAll() {
	now := s.now().Unix()
	credited := make(map[string]*accountAccrual)

	err := s.ledger.update(func(accounts map[string]*domain.Account) error {
		for id, acc := range accounts {
			if acc.Banned {
				continue
			}
			total := 0.0
			for _, cert := range acc.Certificates {
				total += accrueCertificate(cert, now)
			}
			if total <= 0 {
				continue
			}
			if err := adjustAccountBalance(acc, domain.BaseCurrency, total, nil); err != nil {
				return err
			}
			summary := &accountAccrual{
				profit:     total,
				newBalance: acc.Balance(domain.BaseCurrency),
			}
			// The next-payout hint mirrors the first certificate only.
			if len(acc.Certificates) > 0 {
				first := acc.Certificates[0]
				if plan, ok := domain.PlanFor(first.PlanKind); ok {
					summary.nextPayout = first.LastPayout + int64(plan.PayoutInterval.Seconds())
					summary.planLabel = plan.Label
				}
			}
			credited[id] = summary
			log.Printf("💰 Accrued %.2f %s for %s", total, domain.BaseCurrency, id)
		}
		return nil
	})
	if err != nil {
		log.Printf("⚠️ Accrual run failed: %v", err)
		return
	}

	for id, acc := range credited {
		s.notifier.Notify(id, accrualNotice(acc))
	}
}

// accrueCertificate applies all payouts due on one certificate and returns
// the profit. LastPayout advances by numPayouts whole intervals.
func accrueCertificate(cert *domain.Certificate, now int64) float64 {
	plan, ok := domain.PlanFor(cert.PlanKind)
	if !ok {
		return 0
	}
	interval := int64(plan.PayoutInterval.Seconds())
	last := cert.LastPayout
	if last == 0 {
		last = cert.JoinedAt
	}
	elapsed := now - last
	if elapsed < interval {
		return 0
	}
	numPayouts := elapsed / interval
	cert.LastPayout = last + numPayouts*interval
	return cert.Principal * plan.PeriodicRate * float64(numPayouts)
}

func accrualNotice(a *accountAccrual) string {
	text := fmt.Sprintf(
		"🎉 Profit credited!\n\nAmount added: %.2f %s\nNew balance: %.2f %s",
		a.profit, domain.BaseCurrency, a.newBalance, domain.BaseCurrency,
	)
	if a.nextPayout > 0 {
		text += fmt.Sprintf(
			"\nNext payout: %s (%s certificate)",
			time.Unix(a.nextPayout, 0).Format("2006-01-02 15:04:05"), a.planLabel,
		)
	}
	return text
}
