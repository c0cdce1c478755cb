package services

import (
	"fmt"
	"log"
	"strings"

	"asser-platform/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

// EventKind classifies an inbound chat event.
type EventKind string

const (
	EventMessage  EventKind = "message"
	EventCallback EventKind = "callback"
)

// Event is one inbound event from the chat gateway: a free-text message or
// a tapped option. Attachment carries an opaque evidence reference for
// photo messages (payment screenshots).
type Event struct {
	ActorID    string    `json:"actor_id" validate:"required"`
	Kind       EventKind `json:"kind" validate:"required,oneof=message callback"`
	Text       string    `json:"text,omitempty"`
	Data       string    `json:"data,omitempty"`
	Attachment string    `json:"attachment,omitempty"`
}

// Option is one tappable choice attached to a reply. Data comes back as the
// callback payload when the user taps it.
type Option struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Reply is one outbound message produced by handling an event.
type Reply struct {
	Text    string   `json:"text"`
	Options []Option `json:"options,omitempty"`
}

func reply(text string, options ...Option) []Reply {
	return []Reply{{Text: text, Options: options}}
}

// Engine routes inbound events through the access gate and the session
// state machine into the underlying services. Every mutation a flow commits
// is a single atomic service call at its terminal step.
type Engine struct {
	ledger   *LedgerService
	queue    *QueueService
	accrual  *AccrualService
	access   *AccessService
	auth     *AuthService
	notifier Notifier
	sessions *SessionRegistry
	validate *validator.Validate
}

// NewEngine creates a new engine
func NewEngine(
	ledger *LedgerService,
	queue *QueueService,
	accrual *AccrualService,
	access *AccessService,
	auth *AuthService,
	notifier Notifier,
) *Engine {
	return &Engine{
		ledger:   ledger,
		queue:    queue,
		accrual:  accrual,
		access:   access,
		auth:     auth,
		notifier: notifier,
		sessions: NewSessionRegistry(),
		validate: validator.New(),
	}
}

// Handle processes one inbound event and returns the replies to deliver to
// the actor. It never returns an error to the gateway; failures become
// user-facing refusal messages.
func (e *Engine) Handle(ev Event) []Reply {
	if err := e.validate.Struct(ev); err != nil {
		log.Printf("⚠️ Dropping malformed event: %v", err)
		return nil
	}

	if ev.Kind == EventMessage && strings.TrimSpace(ev.Text) == "/cancel" {
		e.sessions.End(ev.ActorID)
		return reply("❌ Operation cancelled.", e.menuButton())
	}

	// Banned accounts are refused everywhere; admins are never gated.
	if e.access.IsBlocked(ev.ActorID) {
		e.sessions.End(ev.ActorID)
		return reply(e.access.BanNotice(ev.ActorID))
	}

	if ev.Kind == EventMessage && strings.HasPrefix(strings.TrimSpace(ev.Text), "/start") {
		return e.handleStart(ev)
	}

	if sess := e.sessions.Get(ev.ActorID); sess != nil {
		return e.dispatchFlow(ev, sess)
	}

	if ev.Kind == EventCallback {
		return e.handleCallback(ev)
	}

	return reply("🤔 I didn't understand that. Send /start to open the menu.")
}

// dispatchFlow forwards the event to the active flow's step handler.
// Tapping a fresh top-level action while a flow is in progress abandons the
// old flow and starts the new one.
func (e *Engine) dispatchFlow(ev Event, sess *Session) []Reply {
	if ev.Kind == EventCallback && e.isEntryAction(ev.Data) {
		e.sessions.End(ev.ActorID)
		return e.handleCallback(ev)
	}
	switch sess.Flow {
	case flowRegister:
		return e.stepRegister(ev, sess)
	case flowLogin:
		return e.stepLogin(ev, sess)
	case flowDeposit:
		return e.stepDeposit(ev, sess)
	case flowAssets:
		return e.stepAssetsWithdrawal(ev, sess)
	case flowWithdraw:
		return e.stepWithdraw(ev, sess)
	case flowTransfer:
		return e.stepTransfer(ev, sess)
	case flowInvest:
		return e.stepInvest(ev, sess)
	case flowAdmin:
		return e.stepAdmin(ev, sess)
	default:
		e.sessions.End(ev.ActorID)
		return reply("🤔 Something went wrong, please start again.", e.menuButton())
	}
}

// isEntryAction reports whether data starts a new flow or opens a menu.
func (e *Engine) isEntryAction(data string) bool {
	switch data {
	case "main_menu", "register", "login", "deposit", "withdraw",
		"assets_withdrawal", "transfer", "invest", "terms", "profile",
		"balance", "invite", "premium", "work", "admin_panel":
		return true
	}
	return strings.HasPrefix(data, "admin_") ||
		strings.HasPrefix(data, "approve_") ||
		strings.HasPrefix(data, "reject_")
}

// handleStart is the /start entry point: payouts first, then either the
// main menu or the welcome screen. "/start invite_<id>" carries a referral.
func (e *Engine) handleStart(ev Event) []Reply {
	e.accrual.RunAll()
	e.sessions.End(ev.ActorID)

	if e.ledger.Exists(ev.ActorID) {
		return e.mainMenu(ev.ActorID)
	}

	inviterID := ""
	fields := strings.Fields(ev.Text)
	if len(fields) > 1 && strings.HasPrefix(fields[1], "invite_") {
		inviterID = strings.TrimPrefix(fields[1], "invite_")
	}

	welcome := "👋 Welcome to Asser Investment Platform!\n\nCreate an account or log in to continue."
	if inviterID != "" && e.ledger.Exists(inviterID) {
		sess := e.sessions.Begin(ev.ActorID, flowRegister, stepRegName)
		sess.Data["inviter_id"] = inviterID
		return reply("👋 Welcome! You were invited by a friend.\n\nLet's create your account.\n\nWhat is your full name?")
	}
	return reply(welcome,
		Option{Label: "📝 Create account", Data: "register"},
		Option{Label: "🔑 Log in", Data: "login"},
	)
}

// handleCallback routes a tapped option when no flow is in progress.
func (e *Engine) handleCallback(ev Event) []Reply {
	switch ev.Data {
	case "main_menu":
		e.accrual.RunAll()
		return e.mainMenu(ev.ActorID)
	case "register":
		return e.startRegister(ev)
	case "login":
		return e.startLogin(ev)
	case "deposit":
		return e.startDeposit(ev)
	case "withdraw":
		return e.startWithdraw(ev)
	case "assets_withdrawal":
		return e.startAssetsWithdrawal(ev)
	case "transfer":
		return e.startTransfer(ev)
	case "invest":
		return e.startInvest(ev)
	case "terms":
		return e.showTerms(ev)
	case "accept_terms":
		return e.acceptTerms(ev)
	case "profile":
		return e.showProfile(ev)
	case "balance":
		return e.showBalance(ev)
	case "invite":
		return e.showInvite(ev)
	case "premium":
		return e.showPremium(ev)
	case "work":
		return e.showWork(ev)
	case "admin_panel":
		return e.openAdminPanel(ev)
	}
	if strings.HasPrefix(ev.Data, "admin_") {
		return e.handleAdminAction(ev)
	}
	if strings.HasPrefix(ev.Data, "approve_") || strings.HasPrefix(ev.Data, "reject_") {
		return e.handleQueueDecision(ev)
	}
	return reply("🤔 Unknown action. Send /start to open the menu.")
}

// requireAccount resolves the actor's account or produces the refusal shown
// to unregistered users.
func (e *Engine) requireAccount(actorID string) (*domain.Account, []Reply) {
	acc, err := e.ledger.GetAccount(actorID)
	if err != nil {
		return nil, reply("⚠️ You need an account first. Send /start to register.")
	}
	return acc, nil
}

func (e *Engine) menuButton() Option {
	return Option{Label: "🏠 Main menu", Data: "main_menu"}
}

// mainMenu renders the top-level menu for a registered account.
func (e *Engine) mainMenu(actorID string) []Reply {
	acc, refusal := e.requireAccount(actorID)
	if refusal != nil {
		return refusal
	}
	opts := []Option{
		{Label: "💰 My balance", Data: "balance"},
		{Label: "👤 Profile", Data: "profile"},
		{Label: "📥 Deposit", Data: "deposit"},
		{Label: "📤 Withdraw", Data: "withdraw"},
		{Label: "🏦 Assets withdrawal", Data: "assets_withdrawal"},
		{Label: "🔁 Transfer", Data: "transfer"},
		{Label: "📈 Invest", Data: "invest"},
		{Label: "📜 Terms & contract", Data: "terms"},
		{Label: "🤝 Invite friends", Data: "invite"},
		{Label: "⭐ Premium", Data: "premium"},
		{Label: "💼 How to work", Data: "work"},
	}
	if e.access.IsAdmin(actorID) {
		opts = append(opts, Option{Label: "🛠 Admin panel", Data: "admin_panel"})
	}
	return reply(fmt.Sprintf("🏠 Main menu\n\nHello %s! Choose an action:", acc.Name), opts...)
}
