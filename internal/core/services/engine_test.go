package services

import (
	"fmt"
	"testing"

	"asser-platform/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(actor, text string) Event {
	return Event{ActorID: actor, Kind: EventMessage, Text: text}
}

func callback(actor, data string) Event {
	return Event{ActorID: actor, Kind: EventCallback, Data: data}
}

func photo(actor, ref string) Event {
	return Event{ActorID: actor, Kind: EventMessage, Attachment: ref}
}

// registerVia drives the whole registration flow through the engine.
func registerVia(t *testing.T, env *testEnv, actor, name, email, pass, phone string) {
	t.Helper()
	env.engine.Handle(callback(actor, "register"))
	env.engine.Handle(message(actor, name))
	env.engine.Handle(message(actor, email))
	env.engine.Handle(message(actor, pass))
	replies := env.engine.Handle(message(actor, phone))
	require.NotEmpty(t, replies)
	require.Contains(t, replies[0].Text, "Welcome aboard")
}

func TestRegistrationFlowEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	replies := env.engine.Handle(message("u1", "/start"))
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[0].Text, "Welcome")

	registerVia(t, env, "u1", "Amr Hassan", "amr@example.com", "secret1", "0100")

	acc, err := env.ledger.GetAccount("u1")
	require.NoError(t, err)
	assert.Equal(t, "Amr Hassan", acc.Name)
	assert.Equal(t, "amr@example.com", acc.Email)
	assert.Equal(t, "0100", acc.Phone)
	assert.NotEqual(t, "secret1", acc.PasswordHash)
	assert.NotEmpty(t, acc.InviteCode)

	// Session is gone, the next /start shows the main menu.
	replies = env.engine.Handle(message("u1", "/start"))
	assert.Contains(t, replies[0].Text, "Main menu")
}

func TestRegistrationRejectsBadAndDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u0", "First", "taken@example.com", "0999")

	env.engine.Handle(callback("u1", "register"))
	env.engine.Handle(message("u1", "Amr"))

	replies := env.engine.Handle(message("u1", "not-an-email"))
	assert.Contains(t, replies[0].Text, "email")

	replies = env.engine.Handle(message("u1", "taken@example.com"))
	assert.Contains(t, replies[0].Text, "already registered")

	// The step did not advance; a valid email continues the flow.
	replies = env.engine.Handle(message("u1", "fresh@example.com"))
	assert.Contains(t, replies[0].Text, "password")
}

func TestRegistrationViaInviteLink(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "inviter", "Inviter", "inv@example.com", "0300")

	replies := env.engine.Handle(message("u1", "/start invite_inviter"))
	require.Contains(t, replies[0].Text, "invited by a friend")
	env.engine.Handle(message("u1", "Joiner"))
	env.engine.Handle(message("u1", "join@example.com"))
	env.engine.Handle(message("u1", "secret1"))
	env.engine.Handle(message("u1", "0400"))

	inviter, _ := env.ledger.GetAccount("inviter")
	assert.Equal(t, 1, inviter.TeamCount)
	joiner, _ := env.ledger.GetAccount("u1")
	assert.Equal(t, "inviter", joiner.InviterID)
}

func TestCancelDiscardsFlow(t *testing.T) {
	env := newTestEnv(t)

	env.engine.Handle(callback("u1", "register"))
	env.engine.Handle(message("u1", "Amr"))
	replies := env.engine.Handle(message("u1", "/cancel"))
	assert.Contains(t, replies[0].Text, "cancelled")

	// Nothing was committed mid-flow.
	assert.False(t, env.ledger.Exists("u1"))
	assert.Nil(t, env.engine.sessions.Get("u1"))
}

func TestBannedAccountIsGatedEverywhere(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")
	require.NoError(t, env.ledger.Ban("u1", "fraud", env.adminID))

	for _, ev := range []Event{
		message("u1", "/start"),
		callback("u1", "deposit"),
		callback("u1", "withdraw"),
		callback("u1", "invest"),
		message("u1", "hello"),
	} {
		replies := env.engine.Handle(ev)
		require.NotEmpty(t, replies)
		assert.Contains(t, replies[0].Text, "banned", "event %+v should be gated", ev)
	}
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Register(&RegisterInput{
		ID: "u1", Name: "Amr", Email: "amr@example.com", Phone: "0100", Password: "secret1",
	})
	require.NoError(t, err)

	env.engine.Handle(callback("u1", "login"))
	env.engine.Handle(message("u1", "amr@example.com"))
	replies := env.engine.Handle(message("u1", "wrong"))
	assert.Contains(t, replies[0].Text, "Wrong email or password")

	env.engine.Handle(callback("u1", "login"))
	env.engine.Handle(message("u1", "amr@example.com"))
	replies = env.engine.Handle(message("u1", "secret1"))
	assert.Contains(t, replies[0].Text, "Welcome back")
}

func TestDepositFlowEnqueuesRequest(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	env.engine.Handle(callback("u1", "deposit"))
	env.engine.Handle(callback("u1", "dep_egp"))
	env.engine.Handle(message("u1", "Amr Hassan"))
	env.engine.Handle(message("u1", "0100"))
	env.engine.Handle(message("u1", "500"))
	env.engine.Handle(callback("u1", "dep_method_wallet"))
	replies := env.engine.Handle(photo("u1", "shot-42"))
	assert.Contains(t, replies[0].Text, "deposit request was received")

	pending, err := env.queue.PendingDeposits()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 500.0, pending[0].Amount)
	assert.Equal(t, domain.CurrencyEGP, pending[0].Currency)
	assert.Equal(t, "shot-42", pending[0].EvidenceRef)

	// No credit before approval.
	acc, _ := env.ledger.GetAccount("u1")
	assert.Zero(t, acc.Balance(domain.CurrencyEGP))
}

func TestDepositFlowRequiresScreenshot(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	env.engine.Handle(callback("u1", "deposit"))
	env.engine.Handle(callback("u1", "dep_usdt"))
	env.engine.Handle(message("u1", "50"))
	replies := env.engine.Handle(message("u1", "here you go"))
	assert.Contains(t, replies[0].Text, "screenshot")

	pending, _ := env.queue.PendingDeposits()
	assert.Empty(t, pending)
}

func TestWithdrawFlowReservesFunds(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")
	_, err := env.ledger.AdjustBalance("u1", domain.CurrencyEGP, 1000)
	require.NoError(t, err)

	env.engine.Handle(callback("u1", "withdraw"))
	env.engine.Handle(callback("u1", "wdr_egp"))
	env.engine.Handle(callback("u1", "wdr_method_wallet"))
	replies := env.engine.Handle(message("u1", "500"))
	assert.Contains(t, replies[0].Text, "withdrawal request was received")

	acc, _ := env.ledger.GetAccount("u1")
	assert.Equal(t, 500.0, acc.Balance(domain.CurrencyEGP))
}

func TestTransferFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")
	env.seedAccount(t, "u2", "Nour", "nour@example.com", "0200")
	_, err := env.ledger.AdjustBalance("u1", domain.CurrencyEGP, 300)
	require.NoError(t, err)

	env.engine.Handle(callback("u1", "transfer"))
	replies := env.engine.Handle(message("u1", "nobody"))
	assert.Contains(t, replies[0].Text, "No account found")

	env.engine.Handle(message("u1", "u2"))
	replies = env.engine.Handle(message("u1", "120"))
	assert.Contains(t, replies[0].Text, "Transfer complete")

	to, _ := env.ledger.GetAccount("u2")
	assert.Equal(t, 120.0, to.Balance(domain.CurrencyEGP))
	require.NotEmpty(t, env.notifier.received("u2"))
	assert.Contains(t, env.notifier.received("u2")[0], "received a transfer")
}

func TestInvestFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")
	_, err := env.ledger.AdjustBalance("u1", domain.CurrencyEGP, 1000)
	require.NoError(t, err)

	env.engine.Handle(callback("u1", "invest"))
	env.engine.Handle(callback("u1", "invest_monthly"))
	replies := env.engine.Handle(message("u1", "600"))
	assert.Contains(t, replies[0].Text, "Certificate opened")

	acc, _ := env.ledger.GetAccount("u1")
	assert.Equal(t, 400.0, acc.Balance(domain.CurrencyEGP))
	require.Len(t, acc.Certificates, 1)
	assert.Equal(t, domain.PlanMonthly, acc.Certificates[0].PlanKind)
}

func TestTermsAcceptance(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	replies := env.engine.Handle(callback("u1", "terms"))
	assert.Contains(t, replies[0].Text, "Terms & contract")

	env.engine.Handle(callback("u1", "accept_terms"))
	acc, _ := env.ledger.GetAccount("u1")
	assert.True(t, acc.AcceptedTerms)
	assert.NotZero(t, acc.AcceptanceTime)
}

func TestAdminPanelRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	replies := env.engine.Handle(callback("u1", "admin_panel"))
	assert.Contains(t, replies[0].Text, "not authorized")

	replies = env.engine.Handle(callback("u1", "admin_send"))
	assert.Contains(t, replies[0].Text, "not authorized")

	replies = env.engine.Handle(callback(env.adminID, "admin_panel"))
	assert.Contains(t, replies[0].Text, "Admin panel")
}

func TestAdminSendMoneyFlow(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	env.engine.Handle(callback(env.adminID, "admin_send"))
	env.engine.Handle(message(env.adminID, "u1"))
	env.engine.Handle(message(env.adminID, "250"))
	env.engine.Handle(callback(env.adminID, "credit_reason_reward"))
	replies := env.engine.Handle(callback(env.adminID, "confirm_send"))
	assert.Contains(t, replies[0].Text, "sent to u1")

	acc, _ := env.ledger.GetAccount("u1")
	assert.Equal(t, 250.0, acc.Balance(domain.BaseCurrency))
	require.NotEmpty(t, env.notifier.received("u1"))
	assert.Contains(t, env.notifier.received("u1")[0], "reward")
}

func TestAdminBanFlowWithCustomReason(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	env.engine.Handle(callback(env.adminID, "admin_ban"))
	env.engine.Handle(message(env.adminID, "u1"))
	env.engine.Handle(callback(env.adminID, "banreason_custom"))
	replies := env.engine.Handle(message(env.adminID, "terms abuse"))
	assert.Contains(t, replies[0].Text, "banned")

	acc, _ := env.ledger.GetAccount("u1")
	assert.True(t, acc.Banned)
	assert.Equal(t, "terms abuse", acc.BanReason)
}

func TestAdminQueueDecisionByID(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	req, err := env.queue.SubmitDeposit(&SubmitDepositInput{OwnerID: "u1", Currency: domain.CurrencyEGP, Amount: 100})
	require.NoError(t, err)

	replies := env.engine.Handle(callback(env.adminID, "approve_dep:"+req.ID))
	assert.Contains(t, replies[0].Text, "Done")

	acc, _ := env.ledger.GetAccount("u1")
	assert.Equal(t, 100.0, acc.Balance(domain.CurrencyEGP))

	// A second tap on the same button is stale, not a double credit.
	replies = env.engine.Handle(callback(env.adminID, "approve_dep:"+req.ID))
	assert.Contains(t, replies[0].Text, "already resolved")
}

func TestAdminBroadcast(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("u%d", i)
		env.seedAccount(t, id, "User "+id, id+"@example.com", "010"+id)
	}

	env.engine.Handle(callback(env.adminID, "admin_broadcast"))
	replies := env.engine.Handle(message(env.adminID, "maintenance tonight"))
	assert.Contains(t, replies[0].Text, "3 account(s)")

	for i := 1; i <= 3; i++ {
		got := env.notifier.received(fmt.Sprintf("u%d", i))
		require.NotEmpty(t, got)
		assert.Contains(t, got[0], "maintenance tonight")
	}
}

func TestStartingNewFlowAbandonsOldOne(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, "u1", "Amr", "amr@example.com", "0100")

	env.engine.Handle(callback("u1", "transfer"))
	replies := env.engine.Handle(callback("u1", "deposit"))
	assert.Contains(t, replies[0].Text, "Deposit")

	sess := env.engine.sessions.Get("u1")
	require.NotNil(t, sess)
	assert.Equal(t, flowDeposit, sess.Flow)
}
