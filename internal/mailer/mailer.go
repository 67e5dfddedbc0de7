// Package mailer delivers transactional mail.
package mailer

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends account mail.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends mail through an SMTP server.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// SendPasswordReset mails the reset link.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := PasswordResetMessage(m.cfg.From, to, link)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send password reset mail: %w", err)
	}
	return nil
}

// PasswordResetMessage builds the reset mail.
func PasswordResetMessage(from, to, link string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Reset your TaskQuest password")
	m.SetBody("text/plain", "Use the link below to choose a new password. It expires soon and works once.\n\n"+link+"\n")
	m.AddAlternative("text/html", fmt.Sprintf(
		`<p>Use the link below to choose a new password. It expires soon and works once.</p><p><a href="%s">Reset password</a></p>`,
		html.EscapeString(link),
	))
	return m
}

// LogMailer writes mail to the log instead of sending it. Used when SMTP is
// not configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// SendPasswordReset logs the reset link.
func (m *LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.log.Info("password reset mail not sent, SMTP disabled",
		zap.String("to", to),
		zap.String("link", link),
	)
	return nil
}
