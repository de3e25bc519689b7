package email

import "context"

// Mailer sends the platform's transactional mail.
type Mailer interface {
	// SendActivationEmail delivers the short activation code to a pending
	// registration.
	SendActivationEmail(ctx context.Context, toEmail, toName, code string) error
	// SendOrderConfirmation acknowledges a successful course enrollment.
	SendOrderConfirmation(ctx context.Context, toEmail, toName, courseName string, price float64) error
}
