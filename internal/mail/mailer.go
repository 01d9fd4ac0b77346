package mail

import (
	"context"
	"log"
	"strings"
)

// Mailer sends one HTML email. Implementations must treat a send as
// fire-and-forget relative to order persistence: callers log failures but
// never roll anything back because of them.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// LogMailer writes the envelope to the log instead of sending. Used when
// no mail provider is configured, typically in local development.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to []string, subject, _ string) error {
	log.Printf("mail (not sent): to=%s subject=%q", strings.Join(to, ","), subject)
	return nil
}
