package services

import (
	"sync"
	"testing"

	"asser-platform/internal/adapters/persistence/store"

	"github.com/stretchr/testify/require"
)

// recorderNotifier captures notifications instead of delivering them.
type recorderNotifier struct {
	mu   sync.Mutex
	sent map[string][]string
}

func newRecorderNotifier() *recorderNotifier {
	return &recorderNotifier{sent: make(map[string][]string)}
}

func (r *recorderNotifier) Notify(actorID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[actorID] = append(r.sent[actorID], text)
}

func (r *recorderNotifier) received(actorID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[actorID]
}

// testEnv wires the full service graph over a throwaway file store.
type testEnv struct {
	ledger   *LedgerService
	queue    *QueueService
	accrual  *AccrualService
	access   *AccessService
	auth     *AuthService
	engine   *Engine
	notifier *recorderNotifier
	adminID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	adminID := "admin-1"
	notifier := newRecorderNotifier()
	ledger := NewLedgerService(st)
	access := NewAccessService(ledger, []string{adminID})
	auth := NewAuthService(ledger)
	accrual := NewAccrualService(ledger, notifier)
	queue := NewQueueService(ledger, notifier, []string{adminID})
	engine := NewEngine(ledger, queue, accrual, access, auth, notifier)

	return &testEnv{
		ledger:   ledger,
		queue:    queue,
		accrual:  accrual,
		access:   access,
		auth:     auth,
		engine:   engine,
		notifier: notifier,
		adminID:  adminID,
	}
}

// seedAccount registers an account directly through the ledger.
func (env *testEnv) seedAccount(t *testing.T, id, name, email, phone string) {
	t.Helper()
	_, err := env.ledger.CreateAccount(&CreateAccountInput{
		ID:           id,
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: "x",
		InviteCode:   "code-" + id,
	})
	require.NoError(t, err)
}
