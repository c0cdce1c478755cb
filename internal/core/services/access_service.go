package services

import (
	"fmt"
	"time"
)

// AccessService is the ban gate. Every user-initiated flow consults it
// before making progress; administrators themselves are never gated.
type AccessService struct {
	ledger   *LedgerService
	adminIDs map[string]bool
}

// NewAccessService creates a new access service
func NewAccessService(ledger *LedgerService, adminIDs []string) *AccessService {
	set := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		set[id] = true
	}
	return &AccessService{ledger: ledger, adminIDs: set}
}

// IsAdmin reports whether id belongs to the configured administrator set.
func (s *AccessService) IsAdmin(id string) bool {
	return s.adminIDs[id]
}

// IsBlocked reports whether id is banned. Unknown accounts are not blocked
// (they simply have nothing to mutate yet).
func (s *AccessService) IsBlocked(id string) bool {
	if s.adminIDs[id] {
		return false
	}
	acc, err := s.ledger.GetAccount(id)
	if err != nil {
		return false
	}
	return acc.Banned
}

// BanNotice renders the refusal shown to a blocked account.
func (s *AccessService) BanNotice(id string) string {
	acc, err := s.ledger.GetAccount(id)
	if err != nil || !acc.Banned {
		return ""
	}
	return fmt.Sprintf(
		"🚫 Your account is banned!\n\nReason: %s\nBanned at: %s\n\nPlease contact the administration.",
		acc.BanReason, time.Unix(acc.BanTime, 0).Format("2006-01-02 15:04:05"),
	)
}
