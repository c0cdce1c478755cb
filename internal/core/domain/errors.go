package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("account not found")
	ErrDuplicateIdentity  = errors.New("email or phone already registered")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Ledger errors
var (
	ErrAccountExists  = errors.New("account already exists")
	ErrSelfTransfer   = errors.New("cannot transfer to yourself")
	ErrAlreadyBanned  = errors.New("account is already banned")
	ErrNotBanned      = errors.New("account is not banned")
	ErrUnknownPlan    = errors.New("unknown certificate plan")
	ErrUnknownCredit  = errors.New("unknown credit reason")
	ErrNegativeAmount = errors.New("amount must be greater than zero")
)

// Queue errors
var (
	ErrRequestNotFound = errors.New("pending request not found")
)
