// Package mail file: internal/adapter/mail/mailer.go
package mail

import (
	"GestionBC/internal/core/port"
	"context"
	"crypto/tls"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Config holds the SMTP settings.
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// InsecureSkipVerify disables certificate checks for internal relays.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// sender is the part of gomail.Dialer used by SMTPMailer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends plain-text notifications through gomail.
type SMTPMailer struct {
	dialer sender
	from   string
}

var _ port.Mailer = (*SMTPMailer)(nil)

// New returns an SMTP mailer, or a Noop one when no host is configured.
func New(cfg Config) port.Mailer {
	if cfg.Host == "" {
		slog.Info("mail: no SMTP host configured, e-mails are disabled")
		return Noop{}
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host}
	}
	return &SMTPMailer{dialer: d, from: cfg.From}
}

// NewMessage builds the message sent for a notification.
func (m *SMTPMailer) NewMessage(to []string, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.dialer.DialAndSend(m.NewMessage(to, subject, body))
}

// Noop drops every message.
type Noop struct{}

func (Noop) Send(context.Context, []string, string, string) error { return nil }
