package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"asser-platform/internal/core/domain"
)

const (
	flowInvest = "invest"

	stepInvPlan   = "plan"
	stepInvAmount = "amount"
)

func planOptions() []Option {
	return []Option{
		{Label: "📅 Daily (5% monthly)", Data: "invest_daily"},
		{Label: "🗓 Weekly (6% monthly)", Data: "invest_weekly"},
		{Label: "📆 Monthly (10% monthly)", Data: "invest_monthly"},
		{Label: "🏠 Main menu", Data: "main_menu"},
	}
}

// startInvest opens the certificate purchase flow with the plan catalog.
func (e *Engine) startInvest(ev Event) []Reply {
	acc, refusal := e.requireAccount(ev.ActorID)
	if refusal != nil {
		return refusal
	}
	e.sessions.Begin(ev.ActorID, flowInvest, stepInvPlan)
	return reply(fmt.Sprintf(
		"📈 Investment certificates\n\nYour balance: %.2f %s\n\nChoose a plan:",
		acc.Balance(domain.BaseCurrency), domain.BaseCurrency,
	), planOptions()...)
}

// stepInvest walks plan → amount; the purchase debits the principal and
// opens the certificate in one atomic write.
func (e *Engine) stepInvest(ev Event, sess *Session) []Reply {
	switch sess.Step {
	case stepInvPlan:
		if !strings.HasPrefix(ev.Data, "invest_") {
			return reply("👇 Please pick a plan from the buttons.", planOptions()...)
		}
		kind := domain.PlanKind(strings.TrimPrefix(ev.Data, "invest_"))
		plan, ok := domain.PlanFor(kind)
		if !ok {
			return reply("👇 Please pick a plan from the buttons.", planOptions()...)
		}
		sess.Data["plan"] = string(kind)
		sess.Step = stepInvAmount
		return reply(fmt.Sprintf(
			"📋 The %s plan\n\nMonthly return: %.0f%%\nPayout every: %s\nDuration: %d days\n\nHow much %s would you like to invest?",
			plan.Label, plan.MonthlyPercent, payoutEvery(plan.PayoutInterval), plan.DurationDays, domain.BaseCurrency,
		))

	case stepInvAmount:
		amount, ok := parseAmount(ev.Text)
		if !ok {
			return reply("⚠️ Please send a valid positive amount, e.g. 1000.")
		}
		kind := domain.PlanKind(sess.Data["plan"])
		cert, err := e.ledger.PurchaseCertificate(ev.ActorID, kind, amount)
		e.sessions.End(ev.ActorID)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientFunds) {
				return reply("🚫 Insufficient balance for this investment.", e.menuButton())
			}
			return reply("⚠️ Investment failed, please try again later.", e.menuButton())
		}
		plan, _ := domain.PlanFor(kind)
		return reply(fmt.Sprintf(
			"🎉 Certificate opened!\n\nPlan: %s\nPrincipal: %.2f %s\nFirst payout: %s",
			plan.Label, cert.Principal, domain.BaseCurrency,
			time.Unix(cert.LastPayout+int64(plan.PayoutInterval.Seconds()), 0).Format("2006-01-02 15:04:05"),
		), e.menuButton())
	}

	e.sessions.End(ev.ActorID)
	return reply("🤔 Something went wrong, please start again.", e.menuButton())
}

func payoutEvery(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days == 1 {
		return "day"
	}
	return fmt.Sprintf("%d days", days)
}
