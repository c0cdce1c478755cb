package domain

// Currency is a currency code carried on balances and requests.
type Currency string

const (
	CurrencyEGP  Currency = "EGP"
	CurrencyUSDT Currency = "USDT"
)

// BaseCurrency is the currency certificate profit is credited to.
const BaseCurrency = CurrencyEGP

// Currencies lists every currency an account balance tracks.
var Currencies = []Currency{CurrencyEGP, CurrencyUSDT}

// Account represents a platform account in the domain layer.
// Balances are non-negative; email and phone are unique across accounts
// unless a duplicate approval is recorded for the account id.
type Account struct {
	ID             string               `json:"uid"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	PasswordHash   string               `json:"password"`
	Balances       map[Currency]float64 `json:"balance"`
	Certificates   []*Certificate       `json:"plans"`
	AcceptedTerms  bool                 `json:"accepted_terms"`
	AcceptanceTime int64                `json:"acceptance_time,omitempty"`
	TeamCount      int                  `json:"team_count"`
	InviteCode     string               `json:"invite_code"`
	InviterID      string               `json:"inviter_id,omitempty"`
	Banned         bool                 `json:"banned"`
	BanReason      string               `json:"ban_reason"`
	BanTime        int64                `json:"ban_time,omitempty"`
	Premium        bool                 `json:"premium"`
	RegisteredAt   int64                `json:"registration_date"`
}

// Balance returns the balance for a currency, zero if untracked.
func (a *Account) Balance(c Currency) float64 {
	if a.Balances == nil {
		return 0
	}
	return a.Balances[c]
}

// Certificate represents a time-accruing investment position.
// LastPayout only ever advances in whole multiples of the plan's payout
// interval, which is what makes accrual idempotent.
type Certificate struct {
	PlanKind     PlanKind `json:"type"`
	Principal    float64  `json:"amount"`
	JoinedAt     int64    `json:"join_date"`
	DurationDays int      `json:"duration"`
	LastPayout   int64    `json:"last_payout"`
}

// RequestKind distinguishes the two pending-request queues.
type RequestKind string

const (
	RequestDeposit    RequestKind = "deposit"
	RequestWithdrawal RequestKind = "withdrawal"
)

// DepositRequest is a user-submitted deposit awaiting adjudication.
// No balance is touched until an admin approves it.
type DepositRequest struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"uid"`
	Currency    Currency `json:"currency"`
	Amount      float64  `json:"amount"`
	SubmittedAt int64    `json:"time"`
	OwnerName   string   `json:"user_name"`
	OwnerPhone  string   `json:"user_phone"`
	EvidenceRef string   `json:"screenshot_path"`
	Status      string   `json:"status"`
}

// WithdrawalRequest is a user-submitted withdrawal awaiting adjudication.
// The gross amount (net+fee) was already debited at submission time, so
// approval moves no funds and rejection credits the gross amount back.
type WithdrawalRequest struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"uid"`
	Currency    Currency `json:"currency"`
	Net         float64  `json:"amount"`
	Fee         float64  `json:"fee"`
	SubmittedAt int64    `json:"time"`
	OwnerName   string   `json:"user_name"`
	OwnerPhone  string   `json:"user_phone"`
	Status      string   `json:"status"`
}

// Gross returns the amount originally debited from the owner.
func (w *WithdrawalRequest) Gross() float64 {
	return w.Net + w.Fee
}

// StatusPending is the only status a queued request ever carries; resolved
// requests are removed from the queue, not marked.
const StatusPending = "pending"

// BanRecord is an append-only audit entry. Never mutated or deleted.
type BanRecord struct {
	OwnerID   string `json:"uid"`
	OwnerName string `json:"user_name"`
	Reason    string `json:"reason"`
	Time      int64  `json:"time"`
	AdminID   string `json:"admin_id"`
}

// CreditReason tags an admin-initiated credit.
type CreditReason string

const (
	CreditReward          CreditReason = "reward"
	CreditCompensation    CreditReason = "compensation"
	CreditGift            CreditReason = "gift"
	CreditDeposit         CreditReason = "deposit"
	CreditAssetWithdrawal CreditReason = "asset-withdrawal-credit"
)

// CreditReasons lists the valid admin credit tags.
var CreditReasons = []CreditReason{
	CreditReward,
	CreditCompensation,
	CreditGift,
	CreditDeposit,
	CreditAssetWithdrawal,
}

// ValidCreditReason reports whether r is one of the known tags.
func ValidCreditReason(r CreditReason) bool {
	for _, known := range CreditReasons {
		if r == known {
			return true
		}
	}
	return false
}

// Stats is the admin statistics snapshot.
type Stats struct {
	TotalAccounts      int                  `json:"total_accounts"`
	BannedAccounts     int                  `json:"banned_accounts"`
	PremiumAccounts    int                  `json:"premium_accounts"`
	TotalBalances      map[Currency]float64 `json:"total_balances"`
	PendingDeposits    int                  `json:"pending_deposits"`
	PendingWithdrawals int                  `json:"pending_withdrawals"`
}
