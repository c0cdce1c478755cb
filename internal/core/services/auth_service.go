package services

import (
	"crypto/rand"
	"encoding/base64"

	"asser-platform/internal/core/domain"
	"asser-platform/internal/pkg/password"
)

// AuthService finalizes registrations and verifies logins. Credentials are
// bcrypt-hashed at rest; the login contract stays email+secret → yes/no.
type AuthService struct {
	ledger *LedgerService
}

// NewAuthService creates a new auth service
func NewAuthService(ledger *LedgerService) *AuthService {
	return &AuthService{ledger: ledger}
}

// RegisterInput represents the fields collected by the registration flow
type RegisterInput struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Password  string
	InviterID string
}

// Register hashes the secret, mints an invite code and creates the account.
func (s *AuthService) Register(input *RegisterInput) (*domain.Account, error) {
	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	return s.ledger.CreateAccount(&CreateAccountInput{
		ID:           input.ID,
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		InviteCode:   newInviteCode(),
		InviterID:    input.InviterID,
	})
}

// Login verifies email+secret for the acting account. It returns the
// account on success and domain.ErrInvalidCredentials on any mismatch,
// without revealing which field was wrong.
func (s *AuthService) Login(id, email, secret string) (*domain.Account, error) {
	acc, err := s.ledger.GetAccount(id)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if acc.Email != email || !password.Verify(secret, acc.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return acc, nil
}

// newInviteCode mints an opaque url-safe invite token.
func newInviteCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
