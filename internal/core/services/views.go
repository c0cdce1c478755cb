package services

import (
	"fmt"
	"time"

	"asser-platform/internal/core/domain"
)

// showTerms renders the contract summary with the acceptance button.
func (e *Engine) showTerms(ev Event) []Reply {
	acc, refusal := e.requireAccount(ev.ActorID)
	if refusal != nil {
		return refusal
	}
	text := "📜 Terms & contract\n\n" +
		"1. Deposits are reviewed before being credited.\n" +
		"2. Withdrawals carry a 2% processing fee.\n" +
		"3. Certificate profit accrues per plan schedule.\n" +
		"4. Fraudulent activity leads to a permanent ban.\n"
	if acc.AcceptedTerms {
		text += fmt.Sprintf("\n✅ You accepted the contract on %s.",
			time.Unix(acc.AcceptanceTime, 0).Format("2006-01-02 15:04:05"))
		return reply(text, e.menuButton())
	}
	return reply(text,
		Option{Label: "✅ I accept the contract", Data: "accept_terms"},
		e.menuButton(),
	)
}

// acceptTerms records the acceptance with its timestamp.
func (e *Engine) acceptTerms(ev Event) []Reply {
	if _, refusal := e.requireAccount(ev.ActorID); refusal != nil {
		return refusal
	}
	if err := e.ledger.AcceptTerms(ev.ActorID); err != nil {
		return reply("⚠️ Could not record your acceptance, please try again.", e.menuButton())
	}
	return reply("✅ Contract accepted. Welcome!", e.menuButton())
}

// showProfile renders the account dossier for its owner.
func (e *Engine) showProfile(ev Event) []Reply {
	acc, refusal := e.requireAccount(ev.ActorID)
	if refusal != nil {
		return refusal
	}
	premium := "no"
	if acc.Premium {
		premium = "⭐ yes"
	}
	text := fmt.Sprintf(
		"👤 Profile\n\nID: %s\nName: %s\nEmail: %s\nPhone: %s\nTeam: %d member(s)\nPremium: %s\nRegistered: %s",
		acc.ID, acc.Name, acc.Email, acc.Phone, acc.TeamCount, premium,
		time.Unix(acc.RegisteredAt, 0).Format("2006-01-02"),
	)
	return reply(text, e.menuButton())
}

// showBalance renders balances and open certificates.
func (e *Engine) showBalance(ev Event) []Reply {
	acc, refusal := e.requireAccount(ev.ActorID)
	if refusal != nil {
		return refusal
	}
	text := "💰 Your balance\n"
	for _, c := range domain.Currencies {
		text += fmt.Sprintf("\n%s: %.2f", c, acc.Balance(c))
	}
	if len(acc.Certificates) > 0 {
		text += "\n\n📈 Certificates:"
		for _, cert := range acc.Certificates {
			plan, ok := domain.PlanFor(cert.PlanKind)
			if !ok {
				continue
			}
			next := cert.LastPayout + int64(plan.PayoutInterval.Seconds())
			text += fmt.Sprintf(
				"\n• %s: %.2f %s, next payout %s",
				plan.Label, cert.Principal, domain.BaseCurrency,
				time.Unix(next, 0).Format("2006-01-02 15:04"),
			)
		}
	}
	return reply(text, e.menuButton())
}

// showInvite renders the referral link and team size.
func (e *Engine) showInvite(ev Event) []Reply {
	acc, refusal := e.requireAccount(ev.ActorID)
	if refusal != nil {
		return refusal
	}
	text := fmt.Sprintf(
		"🤝 Invite friends\n\nShare your link:\n/start invite_%s\n\nTeam so far: %d member(s)\n\nEarn 20%% of your direct referrals' profit and 10%% from the second level.",
		acc.ID, acc.TeamCount,
	)
	return reply(text, e.menuButton())
}

// showPremium renders the premium status blurb.
func (e *Engine) showPremium(ev Event) []Reply {
	acc, refusal := e.requireAccount(ev.ActorID)
	if refusal != nil {
		return refusal
	}
	if acc.Premium {
		return reply("⭐ You are a premium member!\n\nEnjoy priority review of your requests.", e.menuButton())
	}
	return reply("⭐ Premium membership\n\nPremium members get priority review of deposits and withdrawals. Contact the administration to upgrade.", e.menuButton())
}

// showWork renders the how-to-work primer.
func (e *Engine) showWork(ev Event) []Reply {
	if _, refusal := e.requireAccount(ev.ActorID); refusal != nil {
		return refusal
	}
	text := "💼 How to work\n\n" +
		"1. Deposit funds into your account.\n" +
		"2. Open an investment certificate (daily, weekly or monthly plan).\n" +
		"3. Profit is credited automatically per the plan schedule.\n" +
		"4. Withdraw anytime, a 2% processing fee applies.\n" +
		"5. Invite friends to grow your team and your referral earnings."
	return reply(text, e.menuButton())
}
