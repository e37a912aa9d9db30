package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"votegate/internal/platform/config"
)

// dialer is the part of *gomail.Dialer the sender needs.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers plain-text mail over SMTP.
type EmailSender struct {
	from   string
	dialer dialer
}

// NewEmailSender builds an SMTP sender. Host is required.
func NewEmailSender(cfg config.SMTP) (*EmailSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("missing SMTP_HOST")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("missing SMTP_FROM")
	}
	return &EmailSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (s *EmailSender) Send(ctx context.Context, to string, msg Message) error {
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
