package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/pkg/logger"
)

// SMTPMailer sends HTML notification emails over SMTP. When credentials are
// absent every send is a logged no-op success so the monitoring cycle keeps
// going on unconfigured installs.
type SMTPMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
	logger   logger.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(host, port, user, password, from string, logger logger.Logger) repository.MailerRepository {
	return &SMTPMailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		logger:   logger,
	}
}

// Send delivers one HTML email
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.user == "" || m.password == "" {
		m.logger.Info("Email not configured, skipping send", "to", to, "subject", subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\n", m.from) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		htmlBody

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}
