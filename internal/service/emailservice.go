package service

import (
	"context"
	"fmt"
	"strings"

	"storyshare/internal/email"
)

// EmailService sends the transactional mails (welcome, password reset) over
// the configured SMTP relay. Send is a field so tests can intercept it.
type EmailService struct {
	Settings  email.Settings
	FromName  string
	FromEmail string
	Send      func(email.Settings, email.Message) error
}

func (s *EmailService) Enabled() bool { return s.Settings.Host != "" }

func (s *EmailService) send(msg email.Message) error {
	sendFn := s.Send
	if sendFn == nil {
		sendFn = email.Send
	}
	return sendFn(s.Settings, msg)
}

// SendWelcome greets a fresh signup. Delivery failures are the caller's to
// ignore: a missing welcome mail never blocks the signup.
func (s *EmailService) SendWelcome(ctx context.Context, toEmail, name, siteURL string) error {
	if !s.Enabled() {
		return nil
	}
	_ = ctx

	firstName := name
	if i := strings.IndexByte(firstName, ' '); i > 0 {
		firstName = firstName[:i]
	}

	body := strings.Join([]string{
		fmt.Sprintf("Hi %s,", firstName),
		"",
		"Welcome to Storyshare! Your account is ready.",
		siteURL,
	}, "\n")

	return s.send(email.Message{
		FromName:  s.FromName,
		FromEmail: s.FromEmail,
		ToEmail:   toEmail,
		Subject:   "Welcome to Storyshare",
		TextBody:  body,
	})
}

func (s *EmailService) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	if !s.Enabled() {
		return fmt.Errorf("smtp not configured")
	}
	_ = ctx

	body := strings.Join([]string{
		"You requested a password reset.",
		"",
		"Reset your password using this link (valid for 10 minutes):",
		resetURL,
		"",
		"If you did not request this, you can ignore this email.",
	}, "\n")

	return s.send(email.Message{
		FromName:  s.FromName,
		FromEmail: s.FromEmail,
		ToEmail:   toEmail,
		Subject:   "Reset your Storyshare password",
		TextBody:  body,
	})
}
