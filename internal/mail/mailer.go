// Package mail sends transactional email. Only the forgot-password flow
// uses it today.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
)

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, username, newPassword string) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, username, newPassword string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your password was reset\r\n\r\n"+
			"Hello %s,\r\n\r\nYour new login password is: %s\r\n\r\n"+
			"Please sign in and change it as soon as possible.\r\n",
		m.from, to, username, newPassword)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send password reset mail: %w", err)
	}
	return nil
}

// LogMailer stands in when no SMTP host is configured. It refuses delivery
// so the reset flow fails before any password changes, and logs why.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, username, _ string) error {
	m.logger.Warn("smtp not configured, password reset mail not sent",
		"to", to,
		"username", username)
	return errors.New("mail delivery is not configured")
}
