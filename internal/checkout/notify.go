package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/namexuser/body-products/internal/mail"
	"github.com/namexuser/body-products/internal/order"
)

// notify sends the confirmation email to the customer and mirrors it to
// the back office. One send covers both recipients, so they either both
// get it or neither does.
func (s *Service) notify(ctx context.Context, header *order.Order, items []order.Item) error {
	body, err := mail.RenderConfirmation(header, items, s.storeName)
	if err != nil {
		return err
	}

	to := []string{header.CustomerEmail}
	if s.backOfficeTo != "" {
		to = append(to, s.backOfficeTo)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.mailer.Send(sendCtx, to, mail.ConfirmationSubject(header), body); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}
