package services

import (
	"fmt"
	"log"
	"time"

	"asser-platform/internal/core/domain"

	"github.com/google/uuid"
)

// QueueService manages the pending deposit and withdrawal queues and their
// approve/reject transitions. Requests carry a stable id assigned at
// submission; actions resolve against the current queue by that id, so a
// concurrent removal can never redirect an approval to the wrong entry.
// All mutations run under the ledger's lock because resolution and
// reservation touch balances and queue in the same step.
type QueueService struct {
	ledger   *LedgerService
	notifier Notifier
	adminIDs []string
}

// NewQueueService creates a new queue service
func NewQueueService(ledger *LedgerService, notifier Notifier, adminIDs []string) *QueueService {
	return &QueueService{ledger: ledger, notifier: notifier, adminIDs: adminIDs}
}

// SubmitDepositInput carries the fields collected by the deposit flow.
type SubmitDepositInput struct {
	OwnerID     string
	Currency    domain.Currency
	Amount      float64
	OwnerName   string
	OwnerPhone  string
	EvidenceRef string
}

// SubmitDeposit records a deposit request. Balances are untouched until an
// administrator approves it.
func (s *QueueService) SubmitDeposit(input *SubmitDepositInput) (*domain.DepositRequest, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrNegativeAmount
	}
	req := &domain.DepositRequest{
		ID:          uuid.NewString(),
		OwnerID:     input.OwnerID,
		Currency:    input.Currency,
		Amount:      input.Amount,
		SubmittedAt: time.Now().Unix(),
		OwnerName:   input.OwnerName,
		OwnerPhone:  input.OwnerPhone,
		EvidenceRef: input.EvidenceRef,
		Status:      domain.StatusPending,
	}

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	deposits, err := s.ledger.store.LoadDeposits()
	if err != nil {
		return nil, err
	}
	deposits = append(deposits, req)
	if err := s.ledger.store.SaveDeposits(deposits); err != nil {
		return nil, err
	}

	log.Printf("📥 Deposit request %s: %s %.2f %s", req.ID, req.OwnerID, req.Amount, req.Currency)
	s.alertAdmins(fmt.Sprintf(
		"📥 New deposit request!\n\nUID: %s\nName: %s\nPhone: %s\nAmount: %.2f %s\nEvidence: %s\nRequest: %s",
		req.OwnerID, req.OwnerName, req.OwnerPhone, req.Amount, req.Currency, req.EvidenceRef, req.ID,
	))
	return req, nil
}

// SubmitWithdrawal validates the balance, debits the gross amount
// immediately (reservation) and enqueues a request carrying net and fee
// separately. fee = round2(gross * 2%), net = gross - fee.
func (s *QueueService) SubmitWithdrawal(ownerID string, currency domain.Currency, gross float64) (*domain.WithdrawalRequest, error) {
	if gross <= 0 {
		return nil, domain.ErrNegativeAmount
	}
	fee := round2(gross * WithdrawalFeeRate)
	net := gross - fee

	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	var req *domain.WithdrawalRequest
	err := s.ledger.updateLocked(func(accounts map[string]*domain.Account) error {
		acc, ok := accounts[ownerID]
		if !ok {
			return domain.ErrNotFound
		}
		if acc.Balance(currency) < gross {
			return domain.ErrInsufficientFunds
		}
		if err := adjustAccountBalance(acc, currency, -gross, nil); err != nil {
			return err
		}
		req = &domain.WithdrawalRequest{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			Currency:    currency,
			Net:         net,
			Fee:         fee,
			SubmittedAt: time.Now().Unix(),
			OwnerName:   acc.Name,
			OwnerPhone:  acc.Phone,
			Status:      domain.StatusPending,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	withdrawals, err := s.ledger.store.LoadWithdrawals()
	if err != nil {
		return nil, err
	}
	withdrawals = append(withdrawals, req)
	if err := s.ledger.store.SaveWithdrawals(withdrawals); err != nil {
		return nil, err
	}

	log.Printf("📤 Withdrawal request %s: %s net %.2f fee %.2f %s", req.ID, ownerID, net, fee, currency)
	s.alertAdmins(fmt.Sprintf(
		"📤 New withdrawal request!\n\nUID: %s\nName: %s\nPhone: %s\nNet (after 2%% fee): %.2f %s\nRequest: %s",
		req.OwnerID, req.OwnerName, req.OwnerPhone, req.Net, req.Currency, req.ID,
	))
	return req, nil
}

// PendingDeposits returns the current deposit queue.
func (s *QueueService) PendingDeposits() ([]*domain.DepositRequest, error) {
	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	return s.ledger.store.LoadDeposits()
}

// PendingWithdrawals returns the current withdrawal queue.
func (s *QueueService) PendingWithdrawals() ([]*domain.WithdrawalRequest, error) {
	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	return s.ledger.store.LoadWithdrawals()
}

// ResolveDeposit approves or rejects the deposit request with the given id.
// Approval credits the submitted amount; either way the entry is removed
// and the owner notified.
func (s *QueueService) ResolveDeposit(requestID string, approve bool) (*domain.DepositRequest, error) {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	deposits, err := s.ledger.store.LoadDeposits()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, d := range deposits {
		if d.ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrRequestNotFound
	}
	req := deposits[idx]

	// Remove the entry before crediting: if the credit cannot commit the
	// entry is restored, so a retried approval can never double-credit.
	deposits = append(deposits[:idx], deposits[idx+1:]...)
	if err := s.ledger.store.SaveDeposits(deposits); err != nil {
		return nil, err
	}

	if approve {
		err := s.ledger.updateLocked(func(accounts map[string]*domain.Account) error {
			acc, ok := accounts[req.OwnerID]
			if !ok {
				return domain.ErrNotFound
			}
			return adjustAccountBalance(acc, req.Currency, req.Amount, nil)
		})
		if err != nil {
			if saveErr := s.ledger.store.SaveDeposits(append(deposits, req)); saveErr != nil {
				log.Printf("⚠️ Failed to restore deposit %s after failed credit: %v", req.ID, saveErr)
			}
			return nil, err
		}
	}

	if approve {
		log.Printf("✅ Deposit %s approved: +%.2f %s for %s", req.ID, req.Amount, req.Currency, req.OwnerID)
		s.notifier.Notify(req.OwnerID, fmt.Sprintf(
			"✅ Your deposit was approved!\n\n%.2f %s has been added to your balance.", req.Amount, req.Currency))
	} else {
		log.Printf("❌ Deposit %s rejected for %s", req.ID, req.OwnerID)
		s.notifier.Notify(req.OwnerID, fmt.Sprintf(
			"❌ Your deposit of %.2f %s was rejected.\nPlease verify your details and try again.", req.Amount, req.Currency))
	}
	return req, nil
}

// ResolveWithdrawal approves or rejects the withdrawal request with the
// given id. Approval moves no funds (the gross amount was debited at
// submission); rejection credits net+fee back.
func (s *QueueService) ResolveWithdrawal(requestID string, approve bool) (*domain.WithdrawalRequest, error) {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()

	withdrawals, err := s.ledger.store.LoadWithdrawals()
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, w := range withdrawals {
		if w.ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrRequestNotFound
	}
	req := withdrawals[idx]

	// Same ordering as ResolveDeposit: removal commits first so a retried
	// rejection can never refund twice.
	withdrawals = append(withdrawals[:idx], withdrawals[idx+1:]...)
	if err := s.ledger.store.SaveWithdrawals(withdrawals); err != nil {
		return nil, err
	}

	if !approve {
		err := s.ledger.updateLocked(func(accounts map[string]*domain.Account) error {
			acc, ok := accounts[req.OwnerID]
			if !ok {
				return domain.ErrNotFound
			}
			return adjustAccountBalance(acc, req.Currency, req.Gross(), nil)
		})
		if err != nil {
			if saveErr := s.ledger.store.SaveWithdrawals(append(withdrawals, req)); saveErr != nil {
				log.Printf("⚠️ Failed to restore withdrawal %s after failed refund: %v", req.ID, saveErr)
			}
			return nil, err
		}
	}

	if approve {
		log.Printf("✅ Withdrawal %s approved: %.2f %s to %s", req.ID, req.Net, req.Currency, req.OwnerID)
		s.notifier.Notify(req.OwnerID, fmt.Sprintf(
			"✅ Your withdrawal was approved!\n\n%.2f %s is on its way, transfer within 24 hours.", req.Net, req.Currency))
	} else {
		log.Printf("❌ Withdrawal %s rejected, %.2f %s returned to %s", req.ID, req.Gross(), req.Currency, req.OwnerID)
		s.notifier.Notify(req.OwnerID, fmt.Sprintf(
			"❌ Your withdrawal was rejected.\n%.2f %s has been returned to your balance.", req.Gross(), req.Currency))
	}
	return req, nil
}

// alertAdmins pushes a submission notice to every configured administrator.
func (s *QueueService) alertAdmins(text string) {
	for _, adminID := range s.adminIDs {
		s.notifier.Notify(adminID, text)
	}
}
