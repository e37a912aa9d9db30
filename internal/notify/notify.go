// Package notify delivers one-time codes to voters over email or SMS.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"votegate/internal/otp/models"
	"votegate/internal/platform/logger"
	"votegate/pkg/requestcontext"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers a message to one recipient over a single channel.
type Sender interface {
	Send(ctx context.Context, to string, msg Message) error
}

// Notifier routes codes to the sender for their channel.
type Notifier struct {
	email  Sender
	sms    Sender
	logger *slog.Logger
}

type Option func(*Notifier)

func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = l
	}
}

func New(email, sms Sender, opts ...Option) *Notifier {
	n := &Notifier{email: email, sms: sms, logger: slog.Default()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SendCode renders and sends code. The code itself never reaches the logs.
func (n *Notifier) SendCode(ctx context.Context, contact string, channel models.Channel, code string, purpose models.Purpose, expiresAt time.Time) error {
	var sender Sender
	var msg Message
	switch channel {
	case models.ChannelEmail:
		sender, msg = n.email, emailMessage(code, purpose, requestcontext.Now(ctx), expiresAt)
	case models.ChannelPhone:
		sender, msg = n.sms, smsMessage(code, requestcontext.Now(ctx), expiresAt)
	default:
		return fmt.Errorf("unsupported channel %q", channel)
	}
	if sender == nil {
		return fmt.Errorf("no sender configured for %s", channel)
	}
	if err := sender.Send(ctx, contact, msg); err != nil {
		n.logger.WarnContext(ctx, "notification send failed",
			"request_id", requestcontext.RequestID(ctx),
			"channel", channel,
			"contact", logger.MaskContact(contact),
			"error", err,
		)
		return err
	}
	n.logger.InfoContext(ctx, "notification sent",
		"request_id", requestcontext.RequestID(ctx),
		"channel", channel,
		"contact", logger.MaskContact(contact),
	)
	return nil
}

func emailMessage(code string, purpose models.Purpose, now, expiresAt time.Time) Message {
	subject := "Your VoteGate verification code"
	if purpose == models.PurposeRegistration {
		subject = "Complete your VoteGate registration"
	}
	return Message{
		Subject: subject,
		Body: fmt.Sprintf("Your verification code is %s.\n\nIt expires %s. If you did not request it, ignore this message.\n",
			code, expiresIn(now, expiresAt)),
	}
}

func smsMessage(code string, now, expiresAt time.Time) Message {
	return Message{
		Body: fmt.Sprintf("VoteGate code: %s (expires %s)", code, expiresIn(now, expiresAt)),
	}
}

// expiresIn renders "10 minutes from now".
func expiresIn(now, expiresAt time.Time) string {
	return humanize.RelTime(expiresAt, now, "ago", "from now")
}
