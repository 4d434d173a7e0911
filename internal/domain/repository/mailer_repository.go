package repository

import "context"

// MailerRepository defines the interface for the notification transport.
// Implementations with no configured credentials succeed as a logged no-op;
// delivery is best-effort and never reverts committed state.
type MailerRepository interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
