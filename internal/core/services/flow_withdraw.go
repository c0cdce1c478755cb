package services

import (
	"errors"
	"fmt"

	"asser-platform/internal/core/domain"
)

const (
	flowWithdraw = "withdraw"

	stepWdrCurrency = "currency"
	stepWdrMethod   = "method"
	stepWdrAmount   = "amount"
)

// startWithdraw opens the withdrawal flow with the currency choice.
func (e *Engine) startWithdraw(ev Event) []Reply {
	if _, refusal := e.requireAccount(ev.ActorID); refusal != nil {
		return refusal
	}
	e.sessions.Begin(ev.ActorID, flowWithdraw, stepWdrCurrency)
	return reply("📤 Withdraw\n\nWhich currency would you like to withdraw?", currencyOptions("wdr")...)
}

// stepWithdraw walks the withdrawal flow. The terminal step reserves the
// gross amount immediately; a later rejection refunds it in full.
func (e *Engine) stepWithdraw(ev Event, sess *Session) []Reply {
	switch sess.Step {
	case stepWdrCurrency:
		cur, ok := pickedCurrency(ev.Data, "wdr")
		if !ok {
			return reply("👇 Please pick a currency from the buttons.", currencyOptions("wdr")...)
		}
		sess.Data["currency"] = string(cur)
		if cur == domain.CurrencyEGP {
			sess.Step = stepWdrMethod
			return reply("🏦 Choose a payout method:",
				Option{Label: "📲 E-wallet", Data: "wdr_method_wallet"},
				Option{Label: "🏧 InstaPay (soon)", Data: "wdr_method_instapay"},
			)
		}
		sess.Step = stepWdrAmount
		return reply("💵 How much USDT would you like to withdraw?\n\nA 2% processing fee applies.")

	case stepWdrMethod:
		switch ev.Data {
		case "wdr_method_wallet":
			sess.Step = stepWdrAmount
			return reply("💰 How much EGP would you like to withdraw?\n\nPayout goes to your registered e-wallet number. A 2% processing fee applies.")
		case "wdr_method_instapay":
			return reply("🚧 This payout method is coming soon. Please choose another:",
				Option{Label: "📲 E-wallet", Data: "wdr_method_wallet"},
			)
		}
		return reply("👇 Please pick a payout method from the buttons.")

	case stepWdrAmount:
		amount, ok := parseAmount(ev.Text)
		if !ok {
			return reply("⚠️ Please send a valid positive amount, e.g. 500.")
		}
		currency := domain.Currency(sess.Data["currency"])
		req, err := e.queue.SubmitWithdrawal(ev.ActorID, currency, amount)
		e.sessions.End(ev.ActorID)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientFunds) {
				return reply("🚫 Insufficient balance for this withdrawal.", e.menuButton())
			}
			return reply("⚠️ Could not submit your withdrawal, please try again later.", e.menuButton())
		}
		return reply(fmt.Sprintf(
			"✅ Your withdrawal request was received!\n\nAmount: %.2f %s\nFee (2%%): %.2f %s\nYou will receive: %.2f %s\n\nIt will be processed after review.",
			req.Gross(), currency, req.Fee, currency, req.Net, currency,
		), e.menuButton())
	}

	e.sessions.End(ev.ActorID)
	return reply("🤔 Something went wrong, please start again.", e.menuButton())
}
