// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"fmt"
	"time"

	"github.com/a-h/templ"
	"github.com/mauricehans/moto/internal/i18n"
)

// Message is a rendered email with a plain-text body and an HTML alternative.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Service renders and sends the account emails.
type Service struct {
	sender Sender
}

// NewService creates an email service delivering through sender.
func NewService(sender Sender) *Service {
	return &Service{sender: sender}
}

// SendPasswordReset sends the password reset link to an administrator.
func (s *Service) SendPasswordReset(ctx context.Context, to, username, resetURL string, ttl time.Duration) error {
	greeting := i18n.TData(ctx, "email.greeting", map[string]any{"Username": username})
	intro := i18n.T(ctx, "email.reset.intro")
	action := i18n.T(ctx, "email.reset.action")
	expiry := i18n.TData(ctx, "email.reset.expiry", map[string]any{"Hours": int(ttl.Hours())})
	ignore := i18n.T(ctx, "email.reset.ignore")
	signature := i18n.T(ctx, "email.signature")

	text := fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n\n%s\n%s\n\n%s\n",
		greeting, intro, action, resetURL, expiry, ignore, signature)

	body := emailLayout(greeting, []string{intro, action}, &emailLink{
		URL:   resetURL,
		Label: i18n.T(ctx, "email.reset.button"),
	}, []string{expiry, ignore}, signature)

	return s.deliver(ctx, to, i18n.T(ctx, "email.reset.subject"), text, body)
}

// SendOTP sends a one-time code to an administrator.
func (s *Service) SendOTP(ctx context.Context, to, username, code string, ttl time.Duration) error {
	greeting := i18n.TData(ctx, "email.greeting", map[string]any{"Username": username})
	codeLine := i18n.TData(ctx, "email.otp.code", map[string]any{"Code": code})
	expiry := i18n.TData(ctx, "email.otp.expiry", map[string]any{"Minutes": int(ttl.Minutes())})
	ignore := i18n.T(ctx, "email.otp.ignore")
	signature := i18n.T(ctx, "email.signature")

	text := fmt.Sprintf("%s\n\n%s\n%s\n\n%s\n\n%s\n", greeting, codeLine, expiry, ignore, signature)

	body := emailLayout(greeting, []string{codeLine}, nil, []string{expiry, ignore}, signature)

	return s.deliver(ctx, to, i18n.T(ctx, "email.otp.subject"), text, body)
}

func (s *Service) deliver(ctx context.Context, to, subject, text string, body templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := body.Render(ctx, buf); err != nil {
		return fmt.Errorf("rendering email: %w", err)
	}

	return s.sender.Send(ctx, Message{
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    buf.String(),
	})
}
