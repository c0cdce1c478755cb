package store

import (
	"asser-platform/internal/core/domain"
)

// Document names for the logical tables. Both drivers persist one JSON
// document per table under these names.
const (
	DocAccounts    = "users"
	DocDeposits    = "pending_deposits"
	DocWithdrawals = "pending_withdrawals"
	DocBanLog      = "ban_log"
	DocApprovals   = "admin_duplicate_approvals"
)

// Store is the durable document store behind the ledger and the request
// queues. Loads never fail on a corrupt document: the bad snapshot is
// quarantined aside, the error is logged, and the empty default is returned.
// Callers are responsible for serializing mutations (see services.LedgerService).
type Store interface {
	LoadAccounts() (map[string]*domain.Account, error)
	SaveAccounts(accounts map[string]*domain.Account) error

	LoadDeposits() ([]*domain.DepositRequest, error)
	SaveDeposits(deposits []*domain.DepositRequest) error

	LoadWithdrawals() ([]*domain.WithdrawalRequest, error)
	SaveWithdrawals(withdrawals []*domain.WithdrawalRequest) error

	LoadBanLog() ([]*domain.BanRecord, error)
	AppendBanRecord(record *domain.BanRecord) error

	LoadApprovals() (map[string]bool, error)
	SaveApprovals(approvals map[string]bool) error
}
