// Package mail is the notification collaborator: a narrow Mailer interface
// with an SMTP implementation and a logging fallback for environments with
// no mail relay configured.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer delivers a plain-text message to a single recipient. Send is
// synchronous; operations that mail after commit surface a Send failure as
// their own failure.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds the relay settings for SMTPMailer.
type SMTPConfig struct {
	Host     string // e.g. "smtp.example.com"
	Port     int    // e.g. 587
	Username string
	Password string
	From     string // sender address
}

// SMTPMailer sends mail through a single SMTP relay using PLAIN auth over
// the connection net/smtp negotiates (STARTTLS when the server offers it).
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPMailer creates an SMTPMailer from the given relay settings.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("mail: SMTP host and sender address are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg, logger: logger}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, a, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("mail: sending to %s: %w", to, err)
	}

	m.logger.Info("mail sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

// LogMailer writes the message to the log instead of delivering it. Used
// in development when no SMTP relay is configured; reset keys end up in
// the server log.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("mail (not delivered, no SMTP relay configured)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
