package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"asser-platform/internal/core/domain"
)

const (
	flowAdmin = "admin"

	stepAdmSendTarget    = "send_target"
	stepAdmSendAmount    = "send_amount"
	stepAdmSendReason    = "send_reason"
	stepAdmSendConfirm   = "send_confirm"
	stepAdmSpecialTarget = "special_target"
	stepAdmSpecialAmount = "special_amount"
	stepAdmBanTarget     = "ban_target"
	stepAdmBanReason     = "ban_reason"
	stepAdmBanCustom     = "ban_custom"
	stepAdmUnbanTarget   = "unban_target"
	stepAdmEditTarget    = "edit_target"
	stepAdmEditCurrency  = "edit_currency"
	stepAdmEditValue     = "edit_value"
	stepAdmSearch        = "search"
	stepAdmPremiumTarget = "premium_target"
	stepAdmBroadcast     = "broadcast"
	stepAdmDupTarget     = "dup_target"
)

func adminMenuOptions() []Option {
	return []Option{
		{Label: "💸 Send money", Data: "admin_send"},
		{Label: "🎁 Special deposit", Data: "admin_special"},
		{Label: "📋 Pending requests", Data: "admin_requests"},
		{Label: "🚫 Ban / unban", Data: "admin_ban_menu"},
		{Label: "✏️ Edit balance", Data: "admin_edit"},
		{Label: "🔍 Search users", Data: "admin_search"},
		{Label: "📊 Statistics", Data: "admin_stats"},
		{Label: "⭐ Premium", Data: "admin_premium_menu"},
		{Label: "📢 Broadcast", Data: "admin_broadcast"},
		{Label: "👥 Approve duplicate", Data: "admin_dup"},
		{Label: "🏠 Main menu", Data: "main_menu"},
	}
}

// openAdminPanel gates on the administrator set, runs payouts and renders
// the panel.
func (e *Engine) openAdminPanel(ev Event) []Reply {
	if !e.access.IsAdmin(ev.ActorID) {
		return reply("🚫 You are not authorized to do that.")
	}
	e.accrual.RunAll()
	e.sessions.End(ev.ActorID)
	return reply("🛠 Admin panel\n\nChoose an action:", adminMenuOptions()...)
}

// handleAdminAction routes the panel's top-level buttons. Each either
// renders directly or begins an admin flow session.
func (e *Engine) handleAdminAction(ev Event) []Reply {
	if !e.access.IsAdmin(ev.ActorID) {
		return reply("🚫 You are not authorized to do that.")
	}

	switch ev.Data {
	case "admin_send":
		e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmSendTarget)
		return reply("💸 Send money\n\nWhat is the recipient's account ID?")

	case "admin_special":
		e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmSpecialTarget)
		return reply("🎁 Special deposit\n\nWhat is the recipient's account ID?")

	case "admin_requests":
		return e.showPendingRequests()

	case "admin_ban_menu":
		return reply("🚫 Ban management\n\nChoose an action:",
			Option{Label: "🚫 Ban user", Data: "admin_ban"},
			Option{Label: "♻️ Unban user", Data: "admin_unban"},
			Option{Label: "🛠 Admin panel", Data: "admin_panel"},
		)

	case "admin_ban":
		e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmBanTarget)
		return reply("🚫 Ban user\n\nWhat is the account ID to ban?")

	case "admin_unban":
		e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmUnbanTarget)
		return reply("♻️ Unban user\n\nWhat is the account ID to unban?")

	case "admin_edit":
		e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmEditTarget)
		return reply("✏️ Edit balance\n\nWhat is the account ID?")

	case "admin_search":
		e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmSearch)
		return reply("🔍 Search users\n\nSend an ID, name, email or phone number:")

	case "admin_stats":
		return e.showStats()

	case "admin_premium_menu":
		return reply("⭐ Premium management\n\nChoose an action:",
			Option{Label: "⭐ Grant premium", Data: "admin_premium_grant"},
			Option{Label: "🗑 Revoke premium", Data: "admin_premium_revoke"},
			Option{Label: "🛠 Admin panel", Data: "admin_panel"},
		)

	case "admin_premium_grant", "admin_premium_revoke":
		sess := e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmPremiumTarget)
		if ev.Data == "admin_premium_grant" {
			sess.Data["grant"] = "yes"
		}
		return reply("⭐ What is the account ID?")

	case "admin_broadcast":
		e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmBroadcast)
		return reply("📢 Broadcast\n\nSend the message to deliver to every account:")

	case "admin_dup":
		e.sessions.Begin(ev.ActorID, flowAdmin, stepAdmDupTarget)
		return reply("👥 Approve duplicate identity\n\nWhat is the account ID to approve?")
	}

	return reply("🤔 Unknown admin action.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
}

// stepAdmin walks the in-progress admin flow. In-flow callback payloads
// deliberately avoid the admin_ prefix so they don't restart the panel.
func (e *Engine) stepAdmin(ev Event, sess *Session) []Reply {
	if !e.access.IsAdmin(ev.ActorID) {
		e.sessions.End(ev.ActorID)
		return reply("🚫 You are not authorized to do that.")
	}

	switch sess.Step {
	case stepAdmSendTarget, stepAdmSpecialTarget, stepAdmBanTarget,
		stepAdmUnbanTarget, stepAdmEditTarget, stepAdmPremiumTarget, stepAdmDupTarget:
		return e.stepAdminTarget(ev, sess)

	case stepAdmSendAmount:
		amount, ok := parseAmount(ev.Text)
		if !ok {
			return reply("⚠️ Please send a valid positive amount.")
		}
		sess.Data["amount"] = strconv.FormatFloat(amount, 'f', -1, 64)
		sess.Step = stepAdmSendReason
		return reply("🏷 Choose a reason:", creditReasonOptions()...)

	case stepAdmSendReason:
		if !strings.HasPrefix(ev.Data, "credit_reason_") {
			return reply("👇 Please pick a reason from the buttons.", creditReasonOptions()...)
		}
		reason := domain.CreditReason(strings.TrimPrefix(ev.Data, "credit_reason_"))
		if !domain.ValidCreditReason(reason) {
			return reply("👇 Please pick a reason from the buttons.", creditReasonOptions()...)
		}
		sess.Data["reason"] = string(reason)
		sess.Step = stepAdmSendConfirm
		return reply(fmt.Sprintf(
			"💸 Confirm sending %s %s to %s (%s)?",
			sess.Data["amount"], domain.BaseCurrency, sess.Data["target"], reason,
		), Option{Label: "✅ Confirm", Data: "confirm_send"}, Option{Label: "❌ Cancel", Data: "abort_send"})

	case stepAdmSendConfirm:
		if ev.Data == "abort_send" {
			e.sessions.End(ev.ActorID)
			return reply("❌ Cancelled.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		if ev.Data != "confirm_send" {
			return reply("👇 Please confirm or cancel from the buttons.")
		}
		return e.commitSendMoney(ev, sess)

	case stepAdmSpecialAmount:
		amount, ok := parseAmount(ev.Text)
		if !ok {
			return reply("⚠️ Please send a valid positive amount.")
		}
		target := sess.Data["target"]
		e.sessions.End(ev.ActorID)
		if err := e.ledger.Credit(target, amount, domain.CreditDeposit); err != nil {
			return reply("⚠️ Credit failed: account not found or invalid amount.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		e.notifier.Notify(target, fmt.Sprintf(
			"🎁 A special deposit of %.2f %s was added to your balance!", amount, domain.BaseCurrency))
		return reply(fmt.Sprintf("✅ Special deposit of %.2f %s sent to %s.", amount, domain.BaseCurrency, target),
			Option{Label: "🛠 Admin panel", Data: "admin_panel"})

	case stepAdmBanReason:
		switch ev.Data {
		case "banreason_fraud":
			return e.commitBan(ev, sess, "Fraudulent activity")
		case "banreason_contract":
			return e.commitBan(ev, sess, "Contract violation pending review")
		case "banreason_custom":
			sess.Step = stepAdmBanCustom
			return reply("✍️ Type the ban reason:")
		}
		return reply("👇 Please pick a reason from the buttons.", banReasonOptions()...)

	case stepAdmBanCustom:
		if ev.Kind != EventMessage || ev.Text == "" {
			return reply("✍️ Type the ban reason:")
		}
		return e.commitBan(ev, sess, ev.Text)

	case stepAdmEditCurrency:
		cur, ok := pickedCurrency(ev.Data, "edit")
		if !ok {
			return reply("👇 Please pick a currency from the buttons.", currencyOptions("edit")...)
		}
		sess.Data["currency"] = string(cur)
		sess.Step = stepAdmEditValue
		return reply(fmt.Sprintf("✏️ Send the new %s balance:", cur))

	case stepAdmEditValue:
		value, err := strconv.ParseFloat(strings.TrimSpace(ev.Text), 64)
		if err != nil || value < 0 {
			return reply("⚠️ Please send a valid non-negative number.")
		}
		target := sess.Data["target"]
		currency := domain.Currency(sess.Data["currency"])
		old, err := e.ledger.SetBalance(target, currency, value)
		e.sessions.End(ev.ActorID)
		if err != nil {
			return reply("⚠️ Balance edit failed.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		e.notifier.Notify(target, fmt.Sprintf(
			"ℹ️ Your %s balance was adjusted by the administration.\nNew balance: %.2f %s", currency, value, currency))
		return reply(fmt.Sprintf("✅ %s balance of %s changed: %.2f → %.2f", currency, target, old, value),
			Option{Label: "🛠 Admin panel", Data: "admin_panel"})

	case stepAdmSearch:
		if ev.Kind != EventMessage || ev.Text == "" {
			return reply("✍️ Send an ID, name, email or phone number:")
		}
		e.sessions.End(ev.ActorID)
		found := e.ledger.Search(ev.Text)
		if len(found) == 0 {
			return reply("🔍 No accounts matched.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		text := fmt.Sprintf("🔍 %d account(s) matched:\n", len(found))
		for _, acc := range found {
			text += "\n" + adminDossier(acc) + "\n"
		}
		return reply(text, Option{Label: "🛠 Admin panel", Data: "admin_panel"})

	case stepAdmBroadcast:
		if ev.Kind != EventMessage || ev.Text == "" {
			return reply("✍️ Send the message to broadcast:")
		}
		ids := e.ledger.ListAccountIDs()
		for _, id := range ids {
			e.notifier.Notify(id, "📢 "+ev.Text)
		}
		e.sessions.End(ev.ActorID)
		return reply(fmt.Sprintf("✅ Broadcast queued for %d account(s).", len(ids)),
			Option{Label: "🛠 Admin panel", Data: "admin_panel"})
	}

	e.sessions.End(ev.ActorID)
	return reply("🤔 Something went wrong, please start again.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
}

// stepAdminTarget handles every "which account?" step. Target existence is
// validated here once, then the flow branches per its origin.
func (e *Engine) stepAdminTarget(ev Event, sess *Session) []Reply {
	if ev.Kind != EventMessage || ev.Text == "" {
		return reply("✍️ Please send the account ID as a message.")
	}
	target := strings.TrimSpace(ev.Text)
	if sess.Step != stepAdmDupTarget && !e.ledger.Exists(target) {
		return reply("⚠️ No account found with that ID. Please check and try again.")
	}
	sess.Data["target"] = target

	switch sess.Step {
	case stepAdmSendTarget:
		sess.Step = stepAdmSendAmount
		return reply(fmt.Sprintf("💰 How much %s to send?", domain.BaseCurrency))

	case stepAdmSpecialTarget:
		sess.Step = stepAdmSpecialAmount
		return reply(fmt.Sprintf("💰 How much %s for the special deposit?", domain.BaseCurrency))

	case stepAdmBanTarget:
		sess.Step = stepAdmBanReason
		return reply("🏷 Choose a ban reason:", banReasonOptions()...)

	case stepAdmUnbanTarget:
		e.sessions.End(ev.ActorID)
		if err := e.ledger.Unban(target); err != nil {
			if errors.Is(err, domain.ErrNotBanned) {
				return reply("⚠️ That account is not banned.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
			}
			return reply("⚠️ Unban failed.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		e.notifier.Notify(target, "♻️ Your account has been unbanned. Welcome back!")
		return reply(fmt.Sprintf("✅ Account %s unbanned.", target), Option{Label: "🛠 Admin panel", Data: "admin_panel"})

	case stepAdmEditTarget:
		sess.Step = stepAdmEditCurrency
		return reply("💱 Which balance to edit?", currencyOptions("edit")...)

	case stepAdmPremiumTarget:
		grant := sess.Data["grant"] == "yes"
		e.sessions.End(ev.ActorID)
		if err := e.ledger.SetPremium(target, grant); err != nil {
			return reply("⚠️ Premium update failed.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		if grant {
			e.notifier.Notify(target, "⭐ Congratulations! Your account was upgraded to premium.")
			return reply(fmt.Sprintf("✅ Premium granted to %s.", target), Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		e.notifier.Notify(target, "ℹ️ Your premium membership was revoked.")
		return reply(fmt.Sprintf("✅ Premium revoked from %s.", target), Option{Label: "🛠 Admin panel", Data: "admin_panel"})

	case stepAdmDupTarget:
		e.sessions.End(ev.ActorID)
		if err := e.ledger.ApproveDuplicate(target); err != nil {
			return reply("⚠️ Approval failed.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		return reply(fmt.Sprintf(
			"✅ Duplicate identity approved for %s. They can now register with an already-used email or phone.", target),
			Option{Label: "🛠 Admin panel", Data: "admin_panel"})
	}

	e.sessions.End(ev.ActorID)
	return reply("🤔 Something went wrong, please start again.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
}

// commitSendMoney applies the confirmed reason-tagged credit and tells the
// recipient with wording matched to the reason.
func (e *Engine) commitSendMoney(ev Event, sess *Session) []Reply {
	target := sess.Data["target"]
	reason := domain.CreditReason(sess.Data["reason"])
	amount, _ := strconv.ParseFloat(sess.Data["amount"], 64)
	e.sessions.End(ev.ActorID)

	if err := e.ledger.Credit(target, amount, reason); err != nil {
		return reply("⚠️ Credit failed: account not found or invalid amount.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
	}
	e.notifier.Notify(target, creditNotice(reason, amount))
	return reply(fmt.Sprintf("✅ %.2f %s sent to %s (%s).", amount, domain.BaseCurrency, target, reason),
		Option{Label: "🛠 Admin panel", Data: "admin_panel"})
}

// commitBan applies the ban and informs the (now blocked) account once.
func (e *Engine) commitBan(ev Event, sess *Session, reason string) []Reply {
	target := sess.Data["target"]
	e.sessions.End(ev.ActorID)

	if err := e.ledger.Ban(target, reason, ev.ActorID); err != nil {
		if errors.Is(err, domain.ErrAlreadyBanned) {
			return reply("⚠️ That account is already banned.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
		}
		return reply("⚠️ Ban failed.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
	}
	e.notifier.Notify(target, fmt.Sprintf(
		"🚫 Your account has been banned.\n\nReason: %s\n\nPlease contact the administration.", reason))
	return reply(fmt.Sprintf("✅ Account %s banned: %s", target, reason), Option{Label: "🛠 Admin panel", Data: "admin_panel"})
}

// showPendingRequests lists both queues with per-request decision buttons.
func (e *Engine) showPendingRequests() []Reply {
	deposits, err := e.queue.PendingDeposits()
	if err != nil {
		return reply("⚠️ Could not load the deposit queue.")
	}
	withdrawals, err := e.queue.PendingWithdrawals()
	if err != nil {
		return reply("⚠️ Could not load the withdrawal queue.")
	}
	if len(deposits) == 0 && len(withdrawals) == 0 {
		return reply("📋 No pending requests.", Option{Label: "🛠 Admin panel", Data: "admin_panel"})
	}

	replies := make([]Reply, 0, len(deposits)+len(withdrawals)+1)
	for _, d := range deposits {
		replies = append(replies, Reply{
			Text: fmt.Sprintf(
				"📥 Deposit %s\n\nUID: %s\nName: %s\nPhone: %s\nAmount: %.2f %s\nEvidence: %s\nSubmitted: %s",
				d.ID, d.OwnerID, d.OwnerName, d.OwnerPhone, d.Amount, d.Currency, d.EvidenceRef,
				time.Unix(d.SubmittedAt, 0).Format("2006-01-02 15:04"),
			),
			Options: []Option{
				{Label: "✅ Approve", Data: "approve_dep:" + d.ID},
				{Label: "❌ Reject", Data: "reject_dep:" + d.ID},
			},
		})
	}
	for _, w := range withdrawals {
		replies = append(replies, Reply{
			Text: fmt.Sprintf(
				"📤 Withdrawal %s\n\nUID: %s\nName: %s\nPhone: %s\nNet: %.2f %s (fee %.2f)\nSubmitted: %s",
				w.ID, w.OwnerID, w.OwnerName, w.OwnerPhone, w.Net, w.Currency, w.Fee,
				time.Unix(w.SubmittedAt, 0).Format("2006-01-02 15:04"),
			),
			Options: []Option{
				{Label: "✅ Approve", Data: "approve_wdr:" + w.ID},
				{Label: "❌ Reject", Data: "reject_wdr:" + w.ID},
			},
		})
	}
	replies = append(replies, Reply{
		Text:    fmt.Sprintf("📋 %d deposit(s), %d withdrawal(s) pending.", len(deposits), len(withdrawals)),
		Options: []Option{{Label: "🛠 Admin panel", Data: "admin_panel"}},
	})
	return replies
}

// handleQueueDecision resolves an approve/reject button by request id. A
// request already resolved by another admin yields a stale-action notice,
// never a double application.
func (e *Engine) handleQueueDecision(ev Event) []Reply {
	if !e.access.IsAdmin(ev.ActorID) {
		return reply("🚫 You are not authorized to do that.")
	}
	action, id, ok := strings.Cut(ev.Data, ":")
	if !ok || id == "" {
		return reply("🤔 Unknown action.")
	}

	var err error
	switch action {
	case "approve_dep":
		_, err = e.queue.ResolveDeposit(id, true)
	case "reject_dep":
		_, err = e.queue.ResolveDeposit(id, false)
	case "approve_wdr":
		_, err = e.queue.ResolveWithdrawal(id, true)
	case "reject_wdr":
		_, err = e.queue.ResolveWithdrawal(id, false)
	default:
		return reply("🤔 Unknown action.")
	}
	if err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			return reply("⚠️ This request was already resolved.", Option{Label: "📋 Pending requests", Data: "admin_requests"})
		}
		return reply("⚠️ Could not resolve the request: "+err.Error(), Option{Label: "📋 Pending requests", Data: "admin_requests"})
	}
	return reply("✅ Done.", Option{Label: "📋 Pending requests", Data: "admin_requests"})
}

// showStats renders the platform statistics snapshot.
func (e *Engine) showStats() []Reply {
	stats, err := e.ledger.Stats()
	if err != nil {
		return reply("⚠️ Could not load statistics.")
	}
	text := fmt.Sprintf(
		"📊 Platform statistics\n\nAccounts: %d\nBanned: %d\nPremium: %d\nPending deposits: %d\nPending withdrawals: %d\n\nTotal balances:",
		stats.TotalAccounts, stats.BannedAccounts, stats.PremiumAccounts,
		stats.PendingDeposits, stats.PendingWithdrawals,
	)
	for _, c := range domain.Currencies {
		text += fmt.Sprintf("\n%s: %.2f", c, stats.TotalBalances[c])
	}
	return reply(text, Option{Label: "🛠 Admin panel", Data: "admin_panel"})
}

func creditReasonOptions() []Option {
	return []Option{
		{Label: "🎉 Reward", Data: "credit_reason_reward"},
		{Label: "🤝 Compensation", Data: "credit_reason_compensation"},
		{Label: "🎁 Gift", Data: "credit_reason_gift"},
		{Label: "📥 Deposit", Data: "credit_reason_deposit"},
		{Label: "🏦 Assets credit", Data: "credit_reason_asset-withdrawal-credit"},
	}
}

func banReasonOptions() []Option {
	return []Option{
		{Label: "🕵️ Fraudulent activity", Data: "banreason_fraud"},
		{Label: "📜 Contract violation", Data: "banreason_contract"},
		{Label: "✍️ Custom reason", Data: "banreason_custom"},
	}
}

// creditNotice is the recipient-facing wording per credit reason.
func creditNotice(reason domain.CreditReason, amount float64) string {
	base := fmt.Sprintf("%.2f %s", amount, domain.BaseCurrency)
	switch reason {
	case domain.CreditReward:
		return fmt.Sprintf("🎉 You received a reward of %s!", base)
	case domain.CreditCompensation:
		return fmt.Sprintf("🤝 You received a compensation of %s.", base)
	case domain.CreditGift:
		return fmt.Sprintf("🎁 You received a gift of %s!", base)
	case domain.CreditDeposit:
		return fmt.Sprintf("📥 A deposit of %s was added to your balance.", base)
	case domain.CreditAssetWithdrawal:
		return fmt.Sprintf("🏦 Your asset sale was credited: %s.", base)
	}
	return fmt.Sprintf("💰 %s was added to your balance.", base)
}

// adminDossier renders one account for the admin search view.
func adminDossier(acc *domain.Account) string {
	status := "active"
	if acc.Banned {
		status = "banned (" + acc.BanReason + ")"
	}
	premium := "no"
	if acc.Premium {
		premium = "yes"
	}
	text := fmt.Sprintf(
		"ID: %s\nName: %s\nEmail: %s\nPhone: %s\nStatus: %s\nPremium: %s\nTeam: %d\nRegistered: %s",
		acc.ID, acc.Name, acc.Email, acc.Phone, status, premium, acc.TeamCount,
		time.Unix(acc.RegisteredAt, 0).Format("2006-01-02"),
	)
	for _, c := range domain.Currencies {
		text += fmt.Sprintf("\n%s: %.2f", c, acc.Balance(c))
	}
	if acc.AcceptedTerms {
		text += "\nTerms: accepted " + time.Unix(acc.AcceptanceTime, 0).Format("2006-01-02")
	} else {
		text += "\nTerms: not accepted"
	}
	now := time.Now().Unix()
	for _, cert := range acc.Certificates {
		remaining := cert.DurationDays - int((now-cert.JoinedAt)/86400)
		if remaining < 0 {
			remaining = 0
		}
		text += fmt.Sprintf("\nCertificate: %s %.2f %s, %d day(s) left",
			cert.PlanKind, cert.Principal, domain.BaseCurrency, remaining)
	}
	return text
}
