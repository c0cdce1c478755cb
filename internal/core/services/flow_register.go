package services

import (
	"errors"
	"fmt"

	"asser-platform/internal/core/domain"
)

const (
	flowRegister = "register"
	flowLogin    = "login"

	stepRegName     = "name"
	stepRegEmail    = "email"
	stepRegPassword = "password"
	stepRegPhone    = "phone"

	stepLoginEmail    = "email"
	stepLoginPassword = "password"
)

// startRegister opens the registration flow. Already-registered actors are
// sent back to the menu instead.
func (e *Engine) startRegister(ev Event) []Reply {
	if e.ledger.Exists(ev.ActorID) {
		return reply("✅ You already have an account.", e.menuButton())
	}
	e.sessions.Begin(ev.ActorID, flowRegister, stepRegName)
	return reply("📝 Let's create your account.\n\nWhat is your full name?")
}

// stepRegister walks name → email → password → phone; the account is only
// created at the terminal commit, so an abandoned flow leaves no trace.
func (e *Engine) stepRegister(ev Event, sess *Session) []Reply {
	if ev.Kind != EventMessage || ev.Text == "" {
		return reply("✍️ Please type your answer as a message.")
	}

	switch sess.Step {
	case stepRegName:
		sess.Data["name"] = ev.Text
		sess.Step = stepRegEmail
		return reply("📧 What is your email address?")

	case stepRegEmail:
		if err := e.validate.Var(ev.Text, "required,email"); err != nil {
			return reply("⚠️ That doesn't look like an email address. Please try again.")
		}
		if e.ledger.IdentityTaken(ev.Text, "", ev.ActorID) && !e.ledger.IsDuplicateApproved(ev.ActorID) {
			return reply("🚫 This email is already registered.\n\nIf this is really your email, contact the administration for approval, then try again.")
		}
		sess.Data["email"] = ev.Text
		sess.Step = stepRegPassword
		return reply("🔒 Choose a password:")

	case stepRegPassword:
		if len(ev.Text) < 4 {
			return reply("⚠️ Password is too short, use at least 4 characters.")
		}
		sess.Data["password"] = ev.Text
		sess.Step = stepRegPhone
		return reply("📱 What is your phone number?")

	case stepRegPhone:
		if e.ledger.IdentityTaken("", ev.Text, ev.ActorID) && !e.ledger.IsDuplicateApproved(ev.ActorID) {
			return reply("🚫 This phone number is already registered.\n\nIf this is really your number, contact the administration for approval, then try again.")
		}
		acc, err := e.auth.Register(&RegisterInput{
			ID:        ev.ActorID,
			Name:      sess.Data["name"],
			Email:     sess.Data["email"],
			Phone:     ev.Text,
			Password:  sess.Data["password"],
			InviterID: sess.Data["inviter_id"],
		})
		if err != nil {
			if errors.Is(err, domain.ErrDuplicateIdentity) {
				return reply("🚫 This email or phone is already registered. Contact the administration for approval.")
			}
			e.sessions.End(ev.ActorID)
			return reply("⚠️ Registration failed, please try again later.", e.menuButton())
		}
		e.sessions.End(ev.ActorID)
		return reply(
			fmt.Sprintf("🎉 Welcome aboard, %s!\n\nYour account is ready.", acc.Name),
			e.menuButton(),
		)
	}

	e.sessions.End(ev.ActorID)
	return reply("🤔 Something went wrong, please start again.", e.menuButton())
}

// startLogin opens the login flow for an existing account.
func (e *Engine) startLogin(ev Event) []Reply {
	e.sessions.Begin(ev.ActorID, flowLogin, stepLoginEmail)
	return reply("🔑 Log in\n\nWhat is your email address?")
}

func (e *Engine) stepLogin(ev Event, sess *Session) []Reply {
	if ev.Kind != EventMessage || ev.Text == "" {
		return reply("✍️ Please type your answer as a message.")
	}

	switch sess.Step {
	case stepLoginEmail:
		sess.Data["email"] = ev.Text
		sess.Step = stepLoginPassword
		return reply("🔒 And your password?")

	case stepLoginPassword:
		acc, err := e.auth.Login(ev.ActorID, sess.Data["email"], ev.Text)
		e.sessions.End(ev.ActorID)
		if err != nil {
			return reply("🚫 Wrong email or password.", Option{Label: "🔑 Try again", Data: "login"})
		}
		return reply(fmt.Sprintf("✅ Welcome back, %s!", acc.Name), e.menuButton())
	}

	e.sessions.End(ev.ActorID)
	return reply("🤔 Something went wrong, please start again.", e.menuButton())
}
