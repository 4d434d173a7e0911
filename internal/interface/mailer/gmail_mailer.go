package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"skyvela-monitor/internal/domain/repository"
	"skyvela-monitor/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailMailer sends notification emails through the Gmail API, for deployments
// where direct SMTP is blocked
type GmailMailer struct {
	service *gmail.Service
	from    string
	logger  logger.Logger
}

// NewGmailMailer creates a new Gmail API mailer
func NewGmailMailer(ctx context.Context, tokenSource oauth2.TokenSource, from string, logger logger.Logger) (repository.MailerRepository, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailMailer{
		service: service,
		from:    from,
		logger:  logger,
	}, nil
}

// Send delivers one HTML email via the authenticated Gmail account
func (m *GmailMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	raw := fmt.Sprintf("From: %s\r\n", m.from) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		htmlBody

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	if _, err := m.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send via Gmail API: %w", err)
	}

	m.logger.Info("Email sent via Gmail API", "to", to, "subject", subject)
	return nil
}
