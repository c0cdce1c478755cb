package services

import (
	"errors"
	"fmt"

	"asser-platform/internal/core/domain"
)

const (
	flowTransfer = "transfer"

	stepTrfTarget = "target"
	stepTrfAmount = "amount"
)

// startTransfer opens the user-to-user transfer flow.
func (e *Engine) startTransfer(ev Event) []Reply {
	if _, refusal := e.requireAccount(ev.ActorID); refusal != nil {
		return refusal
	}
	e.sessions.Begin(ev.ActorID, flowTransfer, stepTrfTarget)
	return reply("🔁 Transfer\n\nWhat is the recipient's account ID?")
}

// stepTransfer walks target → amount; both legs commit in one atomic write
// at the terminal step.
func (e *Engine) stepTransfer(ev Event, sess *Session) []Reply {
	if ev.Kind != EventMessage || ev.Text == "" {
		return reply("✍️ Please type your answer as a message.")
	}

	switch sess.Step {
	case stepTrfTarget:
		target := ev.Text
		if target == ev.ActorID {
			return reply("🚫 You can't transfer to yourself. Send another account ID.")
		}
		if !e.ledger.Exists(target) {
			return reply("⚠️ No account found with that ID. Please check and try again.")
		}
		sess.Data["target"] = target
		sess.Step = stepTrfAmount
		return reply("💰 How much EGP would you like to send?")

	case stepTrfAmount:
		amount, ok := parseAmount(ev.Text)
		if !ok {
			return reply("⚠️ Please send a valid positive amount, e.g. 100.")
		}
		target := sess.Data["target"]
		err := e.ledger.Transfer(ev.ActorID, target, domain.BaseCurrency, amount)
		e.sessions.End(ev.ActorID)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientFunds) {
				return reply("🚫 Insufficient balance for this transfer.", e.menuButton())
			}
			return reply("⚠️ Transfer failed, please try again later.", e.menuButton())
		}
		sender, _ := e.ledger.GetAccount(ev.ActorID)
		senderName := ev.ActorID
		if sender != nil {
			senderName = sender.Name
		}
		e.notifier.Notify(target, fmt.Sprintf(
			"💸 You received a transfer!\n\n%.2f %s from %s.", amount, domain.BaseCurrency, senderName))
		return reply(fmt.Sprintf(
			"✅ Transfer complete!\n\n%.2f %s sent to %s.", amount, domain.BaseCurrency, target), e.menuButton())
	}

	e.sessions.End(ev.ActorID)
	return reply("🤔 Something went wrong, please start again.", e.menuButton())
}
