package notifications

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"gopkg.in/gomail.v2"
)

// sender is the part of *gomail.Dialer used by SMTPNotifier.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends messages through an SMTP relay.
type SMTPNotifier struct {
	dialer sender
	from   string
	logger logging.Logger
}

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPNotifier(cfg SMTPConfig, l logging.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: l.With("module", "smtp_notifier"),
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.dialer.DialAndSend(n.compose(msg)); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}

	n.logger.Info(ctx, "Email sent", "subject", msg.Subject)
	return nil
}

func (n *SMTPNotifier) compose(msg Message) *gomail.Message {
	from := msg.From
	if from == "" {
		from = n.from
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return m
}
