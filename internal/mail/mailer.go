// Package mail sends transactional email through Resend. In dev mode
// messages are logged instead of sent.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Mailer struct {
	client  *resend.Client
	from    string
	appURL  string
	appName string
	isDev   bool
}

func NewMailer(apiKey, from, appURL, appName string, isDev bool) *Mailer {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &Mailer{
		client:  client,
		from:    from,
		appURL:  appURL,
		appName: appName,
		isDev:   isDev,
	}
}

// SendVerificationEmail mails the account activation link for a freshly
// registered user.
func (m *Mailer) SendVerificationEmail(ctx context.Context, email, token string) error {
	verifyURL := fmt.Sprintf("%s/api/users/verify/%s", m.appURL, token)
	subject := fmt.Sprintf("Verify your %s account", m.appName)
	body := fmt.Sprintf("Welcome to %s!\n\nConfirm your email address by opening:\n\n%s\n\nIf you didn't sign up, ignore this message.\n", m.appName, verifyURL)

	return m.send(ctx, "verify", email, subject, body, verifyURL)
}

// SendPasswordResetEmail mails a single-use password reset link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", m.appURL, token)
	subject := fmt.Sprintf("Reset your %s password", m.appName)
	body := fmt.Sprintf("Someone asked to reset the password for this address.\n\nSet a new one here:\n\n%s\n\nIf that wasn't you, ignore this message.\n", resetURL)

	return m.send(ctx, "reset", email, subject, body, resetURL)
}

func (m *Mailer) send(ctx context.Context, kind, to, subject, body, link string) error {
	if m.isDev {
		slog.InfoContext(ctx, "email sent (dev mode)", "type", kind, "to", to, "subject", subject, "url", link)
		return nil
	}

	if m.client == nil {
		return fmt.Errorf("mailer not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := m.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.InfoContext(ctx, "email sent", "type", kind, "to", to)
	}
	return err
}
