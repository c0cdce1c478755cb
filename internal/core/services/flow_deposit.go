package services

import (
	"fmt"
	"strconv"
	"strings"

	"asser-platform/internal/core/domain"
)

const (
	flowDeposit = "deposit"
	flowAssets  = "assets_withdrawal"

	stepDepCurrency = "currency"
	stepDepName     = "name"
	stepDepPhone    = "phone"
	stepDepAmount   = "amount"
	stepDepMethod   = "method"
	stepDepEvidence = "evidence"

	stepAssetsEvidence = "evidence"
)

// parseAmount parses a user-typed positive amount.
func parseAmount(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func currencyOptions(prefix string) []Option {
	return []Option{
		{Label: "🇪🇬 EGP", Data: prefix + "_egp"},
		{Label: "💵 USDT", Data: prefix + "_usdt"},
		{Label: "🏠 Main menu", Data: "main_menu"},
	}
}

func pickedCurrency(data, prefix string) (domain.Currency, bool) {
	switch data {
	case prefix + "_egp":
		return domain.CurrencyEGP, true
	case prefix + "_usdt":
		return domain.CurrencyUSDT, true
	}
	return "", false
}

// startDeposit opens the deposit flow with the currency choice.
func (e *Engine) startDeposit(ev Event) []Reply {
	if _, refusal := e.requireAccount(ev.ActorID); refusal != nil {
		return refusal
	}
	e.sessions.Begin(ev.ActorID, flowDeposit, stepDepCurrency)
	return reply("📥 Deposit\n\nWhich currency would you like to deposit?", currencyOptions("dep")...)
}

// stepDeposit walks the deposit flow. EGP collects sender name and phone
// before the amount; USDT goes straight to the amount. Nothing is credited
// here, the terminal step only enqueues a pending request.
func (e *Engine) stepDeposit(ev Event, sess *Session) []Reply {
	switch sess.Step {
	case stepDepCurrency:
		cur, ok := pickedCurrency(ev.Data, "dep")
		if !ok {
			return reply("👇 Please pick a currency from the buttons.", currencyOptions("dep")...)
		}
		sess.Data["currency"] = string(cur)
		if cur == domain.CurrencyEGP {
			sess.Step = stepDepName
			return reply("👤 What is the sender's full name?")
		}
		sess.Step = stepDepAmount
		return reply("💵 How much USDT would you like to deposit?")

	case stepDepName:
		if ev.Kind != EventMessage || ev.Text == "" {
			return reply("✍️ Please type the sender's full name.")
		}
		sess.Data["name"] = ev.Text
		sess.Step = stepDepPhone
		return reply("📱 What is the sender's phone number?")

	case stepDepPhone:
		if ev.Kind != EventMessage || ev.Text == "" {
			return reply("✍️ Please type the sender's phone number.")
		}
		sess.Data["phone"] = ev.Text
		sess.Step = stepDepAmount
		return reply("💰 How much EGP would you like to deposit?")

	case stepDepAmount:
		amount, ok := parseAmount(ev.Text)
		if !ok {
			return reply("⚠️ Please send a valid positive amount, e.g. 500.")
		}
		sess.Data["amount"] = strconv.FormatFloat(amount, 'f', -1, 64)
		if domain.Currency(sess.Data["currency"]) == domain.CurrencyEGP {
			sess.Step = stepDepMethod
			return reply("🏦 Choose a payment method:",
				Option{Label: "📲 E-wallet", Data: "dep_method_wallet"},
				Option{Label: "🏧 InstaPay (soon)", Data: "dep_method_instapay"},
				Option{Label: "🏛 Bank transfer (soon)", Data: "dep_method_bank"},
			)
		}
		sess.Step = stepDepEvidence
		return reply("💳 Send the USDT (TRC20) to the platform address shown in the app, then send a screenshot of the transfer here.")

	case stepDepMethod:
		switch ev.Data {
		case "dep_method_wallet":
			sess.Step = stepDepEvidence
			return reply("📲 Transfer the amount to the platform e-wallet number shown in the app, then send a screenshot of the transfer here.")
		case "dep_method_instapay", "dep_method_bank":
			return reply("🚧 This payment method is coming soon. Please choose another:",
				Option{Label: "📲 E-wallet", Data: "dep_method_wallet"},
			)
		}
		return reply("👇 Please pick a payment method from the buttons.")

	case stepDepEvidence:
		if ev.Attachment == "" {
			return reply("📸 Please send a screenshot (photo) of the transfer.")
		}
		amount, _ := strconv.ParseFloat(sess.Data["amount"], 64)
		_, err := e.queue.SubmitDeposit(&SubmitDepositInput{
			OwnerID:     ev.ActorID,
			Currency:    domain.Currency(sess.Data["currency"]),
			Amount:      amount,
			OwnerName:   sess.Data["name"],
			OwnerPhone:  sess.Data["phone"],
			EvidenceRef: ev.Attachment,
		})
		e.sessions.End(ev.ActorID)
		if err != nil {
			return reply("⚠️ Could not submit your deposit, please try again later.", e.menuButton())
		}
		return reply("✅ Your deposit request was received!\n\nIt will be reviewed shortly and your balance updated after approval.", e.menuButton())
	}

	e.sessions.End(ev.ActorID)
	return reply("🤔 Something went wrong, please start again.", e.menuButton())
}

// startAssetsWithdrawal opens the external-asset hand-in flow: the user
// sends proof of an off-platform asset sale and admins credit it manually
// with an asset-withdrawal-credit.
func (e *Engine) startAssetsWithdrawal(ev Event) []Reply {
	if _, refusal := e.requireAccount(ev.ActorID); refusal != nil {
		return refusal
	}
	e.sessions.Begin(ev.ActorID, flowAssets, stepAssetsEvidence)
	return reply("🏦 Assets withdrawal\n\nSend a screenshot of your asset sale and the administration will credit your balance after review.")
}

func (e *Engine) stepAssetsWithdrawal(ev Event, sess *Session) []Reply {
	if ev.Attachment == "" {
		return reply("📸 Please send a screenshot (photo) of your asset sale.")
	}
	acc, refusal := e.requireAccount(ev.ActorID)
	if refusal != nil {
		e.sessions.End(ev.ActorID)
		return refusal
	}
	e.queue.alertAdmins(fmt.Sprintf(
		"🏦 Assets withdrawal request!\n\nUID: %s\nName: %s\nPhone: %s\nEvidence: %s\n\nCredit via send money with the asset-withdrawal-credit reason.",
		acc.ID, acc.Name, acc.Phone, ev.Attachment,
	))
	e.sessions.End(ev.ActorID)
	return reply("✅ Your request was received!\n\nThe administration will review it and credit your balance.", e.menuButton())
}
