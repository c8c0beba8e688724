package service

import (
	"context"

	"github.com/fuuti/storefront-api/internal/platform/logger"
)

// Mailer is the outbound notification boundary. Delivery is an external
// collaborator; the services only depend on this seam.
type Mailer interface {
	// SendOTP delivers a one-time code to the recipient.
	SendOTP(ctx context.Context, recipient, subject, code string) error
}

// LogMailer is a Mailer that records deliveries in the structured log
// instead of sending anything. It stands in for a real delivery integration
// in development and tests.
type LogMailer struct{}

// SendOTP implements Mailer by logging the delivery. The code itself is not
// logged.
func (LogMailer) SendOTP(ctx context.Context, recipient, subject, _ string) error {
	logger.FromContext(ctx).Info("otp notification dispatched",
		"recipient", recipient,
		"subject", subject)
	return nil
}
