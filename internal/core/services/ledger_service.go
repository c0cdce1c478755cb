package services

import (
	"log"
	"strings"
	"sync"
	"time"

	"asser-platform/internal/adapters/persistence/store"
	"asser-platform/internal/core/domain"
)

// LedgerService owns the accounts table and the single mutex that
// serializes every ledger/queue mutation. Persistence is whole-table
// read-modify-write, which is only sound because all writers funnel
// through this lock (QueueService and AccrualService share it).
type LedgerService struct {
	mu    sync.RWMutex
	store store.Store
}

// NewLedgerService creates a new ledger service
func NewLedgerService(st store.Store) *LedgerService {
	return &LedgerService{store: st}
}

// update runs fn against the freshly loaded accounts table and writes the
// table back if fn succeeds. Held under the write lock.
func (s *LedgerService) update(fn func(accounts map[string]*domain.Account) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(fn)
}

// updateLocked is update without taking the lock; callers in this package
// that already hold s.mu use it for combined ledger/queue mutations.
func (s *LedgerService) updateLocked(fn func(accounts map[string]*domain.Account) error) error {
	accounts, err := s.store.LoadAccounts()
	if err != nil {
		return err
	}
	if err := fn(accounts); err != nil {
		return err
	}
	return s.store.SaveAccounts(accounts)
}

// view runs fn against a read-only load of the accounts table.
func (s *LedgerService) view(fn func(accounts map[string]*domain.Account) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts, err := s.store.LoadAccounts()
	if err != nil {
		return err
	}
	return fn(accounts)
}

// GetAccount returns the account for id, or domain.ErrNotFound.
func (s *LedgerService) GetAccount(id string) (*domain.Account, error) {
	var account *domain.Account
	err := s.view(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		account = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Exists reports whether an account with id exists.
func (s *LedgerService) Exists(id string) bool {
	_, err := s.GetAccount(id)
	return err == nil
}

// CreateAccountInput carries the fields collected by the registration flow.
// PasswordHash is the already-hashed credential secret.
type CreateAccountInput struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	InviteCode   string
	InviterID    string
}

// CreateAccount registers a new account. Email and phone must not collide
// with a different account unless a duplicate approval is recorded for the
// new account's id. The inviter's team counter is bumped in the same write.
func (s *LedgerService) CreateAccount(input *CreateAccountInput) (*domain.Account, error) {
	var created *domain.Account
	err := s.update(func(accounts map[string]*domain.Account) error {
		if _, ok := accounts[input.ID]; ok {
			return domain.ErrAccountExists
		}
		if s.duplicateIdentityLocked(accounts, input.Email, input.Phone, input.ID) {
			approvals, err := s.store.LoadApprovals()
			if err != nil {
				return err
			}
			if !approvals[input.ID] {
				return domain.ErrDuplicateIdentity
			}
		}

		balances := make(map[domain.Currency]float64, len(domain.Currencies))
		for _, c := range domain.Currencies {
			balances[c] = 0
		}
		created = &domain.Account{
			ID:           input.ID,
			Name:         input.Name,
			Email:        input.Email,
			Phone:        input.Phone,
			PasswordHash: input.PasswordHash,
			Balances:     balances,
			Certificates: []*domain.Certificate{},
			InviteCode:   input.InviteCode,
			InviterID:    input.InviterID,
			RegisteredAt: time.Now().Unix(),
		}
		accounts[input.ID] = created

		if input.InviterID != "" {
			if inviter, ok := accounts[input.InviterID]; ok {
				inviter.TeamCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Account created: %s (%s)", input.ID, input.Email)
	return created, nil
}

// duplicateIdentityLocked reports whether email or phone is already taken
// by an account other than selfID. Empty values never collide.
func (s *LedgerService) duplicateIdentityLocked(accounts map[string]*domain.Account, email, phone, selfID string) bool {
	for id, acc := range accounts {
		if id == selfID {
			continue
		}
		if email != "" && acc.Email == email {
			return true
		}
		if phone != "" && acc.Phone == phone {
			return true
		}
	}
	return false
}

// IdentityTaken checks email/phone uniqueness outside a registration write.
// Used by flow steps to fail fast before the terminal commit.
func (s *LedgerService) IdentityTaken(email, phone, selfID string) bool {
	taken := false
	_ = s.view(func(accounts map[string]*domain.Account) error {
		taken = s.duplicateIdentityLocked(accounts, email, phone, selfID)
		return nil
	})
	return taken
}

// AdjustBalance credits (delta > 0) or debits (delta < 0) one currency
// balance atomically. A debit that would take the balance negative fails
// with domain.ErrInsufficientFunds and leaves the balance unchanged.
func (s *LedgerService) AdjustBalance(id string, currency domain.Currency, delta float64) (float64, error) {
	var newBalance float64
	err := s.update(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		return adjustAccountBalance(acc, currency, delta, &newBalance)
	})
	return newBalance, err
}

// adjustAccountBalance applies delta to a single account, enforcing the
// non-negative invariant. Shared with queue/accrual mutations that operate
// under an already-held lock.
func adjustAccountBalance(acc *domain.Account, currency domain.Currency, delta float64, newBalance *float64) error {
	if acc.Balances == nil {
		acc.Balances = make(map[domain.Currency]float64)
	}
	result := acc.Balances[currency] + delta
	if result < 0 {
		return domain.ErrInsufficientFunds
	}
	acc.Balances[currency] = result
	if newBalance != nil {
		*newBalance = result
	}
	return nil
}

// SetBalance overwrites one currency balance (admin override).
func (s *LedgerService) SetBalance(id string, currency domain.Currency, value float64) (old float64, err error) {
	if value < 0 {
		return 0, domain.ErrNegativeAmount
	}
	err = s.update(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		if acc.Balances == nil {
			acc.Balances = make(map[domain.Currency]float64)
		}
		old = acc.Balances[currency]
		acc.Balances[currency] = value
		return nil
	})
	return old, err
}

// Credit adds an admin-tagged amount to the account's base currency.
func (s *LedgerService) Credit(id string, amount float64, reason domain.CreditReason) error {
	if amount <= 0 {
		return domain.ErrNegativeAmount
	}
	if !domain.ValidCreditReason(reason) {
		return domain.ErrUnknownCredit
	}
	_, err := s.AdjustBalance(id, domain.BaseCurrency, amount)
	if err == nil {
		log.Printf("✅ Credited %.2f %s to %s (%s)", amount, domain.BaseCurrency, id, reason)
	}
	return err
}

// Transfer moves amount between two accounts in one atomic write.
func (s *LedgerService) Transfer(fromID, toID string, currency domain.Currency, amount float64) error {
	if amount <= 0 {
		return domain.ErrNegativeAmount
	}
	if fromID == toID {
		return domain.ErrSelfTransfer
	}
	return s.update(func(accounts map[string]*domain.Account) error {
		from, ok := accounts[fromID]
		if !ok {
			return domain.ErrNotFound
		}
		to, ok := accounts[toID]
		if !ok {
			return domain.ErrNotFound
		}
		if err := adjustAccountBalance(from, currency, -amount, nil); err != nil {
			return err
		}
		return adjustAccountBalance(to, currency, amount, nil)
	})
}

// Ban marks the account banned and appends a BanRecord to the audit log.
func (s *LedgerService) Ban(id, reason, adminID string) error {
	var record *domain.BanRecord
	err := s.update(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		if acc.Banned {
			return domain.ErrAlreadyBanned
		}
		acc.Banned = true
		acc.BanReason = reason
		acc.BanTime = time.Now().Unix()
		record = &domain.BanRecord{
			OwnerID:   id,
			OwnerName: acc.Name,
			Reason:    reason,
			Time:      acc.BanTime,
			AdminID:   adminID,
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.store.AppendBanRecord(record); err != nil {
		// The ban itself is committed; a failed audit append is logged only.
		log.Printf("⚠️ Failed to append ban record for %s: %v", id, err)
	}
	log.Printf("🚫 Account %s banned by %s: %s", id, adminID, reason)
	return nil
}

// Unban clears the ban state, re-enabling flows and accrual.
func (s *LedgerService) Unban(id string) error {
	return s.update(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		if !acc.Banned {
			return domain.ErrNotBanned
		}
		acc.Banned = false
		acc.BanReason = ""
		acc.BanTime = 0
		return nil
	})
}

// SetPremium toggles the premium flag.
func (s *LedgerService) SetPremium(id string, premium bool) error {
	return s.update(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		acc.Premium = premium
		return nil
	})
}

// AcceptTerms records contract acceptance with its timestamp.
func (s *LedgerService) AcceptTerms(id string) error {
	return s.update(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		acc.AcceptedTerms = true
		acc.AcceptanceTime = time.Now().Unix()
		return nil
	})
}

// PurchaseCertificate debits the principal from the EGP balance and appends
// the certificate. Join and last-payout timestamps both start at now.
func (s *LedgerService) PurchaseCertificate(id string, kind domain.PlanKind, principal float64) (*domain.Certificate, error) {
	if principal <= 0 {
		return nil, domain.ErrNegativeAmount
	}
	plan, ok := domain.PlanFor(kind)
	if !ok {
		return nil, domain.ErrUnknownPlan
	}
	var cert *domain.Certificate
	err := s.update(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		if err := adjustAccountBalance(acc, domain.BaseCurrency, -principal, nil); err != nil {
			return err
		}
		now := time.Now().Unix()
		cert = &domain.Certificate{
			PlanKind:     kind,
			Principal:    principal,
			JoinedAt:     now,
			DurationDays: plan.DurationDays,
			LastPayout:   now,
		}
		acc.Certificates = append(acc.Certificates, cert)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Certificate purchased: %s %s %.2f EGP", id, kind, principal)
	return cert, nil
}

// Search matches accounts by id, exact name, email (case-insensitive) or
// phone.
func (s *LedgerService) Search(term string) []*domain.Account {
	var found []*domain.Account
	lower := strings.ToLower(term)
	_ = s.view(func(accounts map[string]*domain.Account) error {
		for id, acc := range accounts {
			if id == term ||
				strings.ToLower(acc.Name) == lower ||
				strings.ToLower(acc.Email) == lower ||
				acc.Phone == term {
				acc.ID = id
				found = append(found, acc)
			}
		}
		return nil
	})
	return found
}

// ListAccountIDs returns every account id (broadcast targets).
func (s *LedgerService) ListAccountIDs() []string {
	var ids []string
	_ = s.view(func(accounts map[string]*domain.Account) error {
		for id := range accounts {
			ids = append(ids, id)
		}
		return nil
	})
	return ids
}

// Stats aggregates the platform statistics snapshot.
func (s *LedgerService) Stats() (*domain.Stats, error) {
	stats := &domain.Stats{TotalBalances: make(map[domain.Currency]float64)}
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := s.store.LoadAccounts()
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		stats.TotalAccounts++
		if acc.Banned {
			stats.BannedAccounts++
		}
		if acc.Premium {
			stats.PremiumAccounts++
		}
		for c, v := range acc.Balances {
			stats.TotalBalances[c] += v
		}
	}
	deposits, err := s.store.LoadDeposits()
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.store.LoadWithdrawals()
	if err != nil {
		return nil, err
	}
	stats.PendingDeposits = len(deposits)
	stats.PendingWithdrawals = len(withdrawals)
	return stats, nil
}

// ApproveDuplicate records the admin override that lets id register with an
// email or phone another account already uses.
func (s *LedgerService) ApproveDuplicate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	approvals, err := s.store.LoadApprovals()
	if err != nil {
		return err
	}
	approvals[id] = true
	return s.store.SaveApprovals(approvals)
}

// IsDuplicateApproved reports whether the override is recorded for id.
func (s *LedgerService) IsDuplicateApproved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	approvals, err := s.store.LoadApprovals()
	if err != nil {
		return false
	}
	return approvals[id]
}
