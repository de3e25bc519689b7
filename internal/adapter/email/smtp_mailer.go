package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/MaheshMoholkar/ignite-lms/internal/app/config"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
)

type smtpMailer struct {
	cfg config.SMTPConfig
	log logger.Logger
	d   *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig, log logger.Logger) (Mailer, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}

	return &smtpMailer{
		cfg: cfg,
		log: log,
		d:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (s *smtpMailer) SendActivationEmail(ctx context.Context, toEmail, toName, code string) error {
	subject := "Activate your account"
	bodyHTML := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your activation code is:</p><h2>%s</h2><p>The code expires in one hour.</p>",
		toName, code)
	bodyText := fmt.Sprintf("Hello %s,\n\nYour activation code is: %s\n\nThe code expires in one hour.\n", toName, code)

	return s.send(ctx, toEmail, subject, bodyHTML, bodyText)
}

func (s *smtpMailer) SendOrderConfirmation(ctx context.Context, toEmail, toName, courseName string, price float64) error {
	subject := "Order confirmation"
	bodyHTML := fmt.Sprintf(
		"<p>Hello %s,</p><p>Thank you for your purchase of <strong>%s</strong> for $%.2f.</p><p>The course is now available in your account.</p>",
		toName, courseName, price)
	bodyText := fmt.Sprintf("Hello %s,\n\nThank you for your purchase of %s for $%.2f.\nThe course is now available in your account.\n",
		toName, courseName, price)

	return s.send(ctx, toEmail, subject, bodyHTML, bodyText)
}

func (s *smtpMailer) send(ctx context.Context, to, subject, bodyHTML, bodyText string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.SenderEmail, s.cfg.SenderName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", bodyHTML)
	m.AddAlternative("text/plain", bodyText)

	done := make(chan error, 1)
	go func() {
		done <- s.d.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		s.log.Warnf("email sending to %s (subject: %s) cancelled by context: %v", to, subject, ctx.Err())
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.log.Errorf("failed to send email to %s, subject '%s': %v", to, subject, err)
			return fmt.Errorf("failed to send email: %w", err)
		}
	}

	s.log.Infof("email sent to %s, subject: %s", to, subject)
	return nil
}
